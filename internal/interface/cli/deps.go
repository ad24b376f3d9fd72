package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// ChartRenderer writes a chart image.
type ChartRenderer interface {
	Render(w io.Writer, c *walkplan.Chart, format chartimg.Format) error
}

// Dependencies wires runtime services.
type Dependencies struct {
	Planner walkplan.Service
	Charts  ChartRenderer
	Version string
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies and returns the exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, errVersionShown) {
		return 0
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
