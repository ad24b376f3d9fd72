package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/walkcast/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New().With("component", "main")

	app, err := initializeApp()
	if err != nil {
		log.Error("failed to wire application", "error", err)
		return 1
	}

	if err := app.Run(ctx); err != nil {
		log.Error("application stopped with error", "error", err)
		return 1
	}
	return 0
}
