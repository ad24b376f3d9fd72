package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/yanqian/walkcast/internal/infra/config"
	"github.com/yanqian/walkcast/internal/infra/geocache"
)

// App owns the walk planner API server and the geocode cache behind it.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	store  geocache.Store
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, store geocache.Store) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, store: store}
}

// Run serves until ctx is done, then drains in-flight plans within
// http.shutdownTimeout and releases the geocode cache.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	defer a.closeStore()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("walkcast api listening", "address", ln.Addr().String())
		errCh <- a.server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received", "timeout", a.cfg.HTTP.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		a.logger.Info("walkcast api stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (a *App) closeStore() {
	closer, ok := a.store.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		a.logger.Warn("geocode cache close failed", "error", err)
	}
}
