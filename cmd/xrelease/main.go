package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/ochairo/xrelease/internal/config"
	orchestrators "github.com/ochairo/xrelease/internal/domain-orchestrators"
	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
	zerologadapter "github.com/ochairo/xrelease/internal/external-adapters/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	app := &cli{cfg: cfg, stdout: stdout, stderr: stderr, logger: &interfaces.NoOpLogger{}}
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var targetErr *orchestrators.TargetError
		switch {
		case errors.Is(err, entities.ErrUsage):
			cmd, _, findErr := root.Find(args)
			if findErr != nil {
				cmd = root
			}
			fmt.Fprintf(stderr, "Usage: %s\n", cmd.UseLine())
		case errors.As(err, &targetErr):
			// Already logged by the orchestrator
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	return 0
}

// cli holds the state shared by all commands
type cli struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger interfaces.Logger

	manifestPath string
	outputDir    string
	quiet        bool
}

// setupLogger builds the logger once flags are parsed.
// --quiet raises the level to warn.
func (c *cli) setupLogger() {
	level := c.cfg.Level()
	if c.quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}

	var w io.Writer = c.stderr
	if !c.cfg.LogJSON {
		w = zerologadapter.NewConsoleWriter(c.stderr, isTerminal(c.stderr), level <= zerolog.DebugLevel)
	}
	c.logger = zerologadapter.NewLogger(w, level)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// defaultName is the tool name used when the manifest does not set one
func defaultName() string {
	wd, err := os.Getwd()
	if err != nil {
		return "release"
	}
	return filepath.Base(wd)
}
