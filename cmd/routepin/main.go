package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/routepin/cli"
	"github.com/sokinpui/routepin/internal/app"
	"github.com/sokinpui/routepin/internal/fs"
	"github.com/sokinpui/routepin/internal/nvim"
	"github.com/sokinpui/routepin/internal/tui"
	"github.com/sokinpui/routepin/internal/ui"
	"github.com/sokinpui/routepin/model"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	cfg, err := cli.Parse(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	logger := ui.NewLogger(stderr, cfg.Verbose)

	opts, err := cfg.Options()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return 1
	}

	a, err := app.New(opts, logger)
	if err != nil {
		logger.Error("Failed to initialize application", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printer := ui.NewPrinter(stderr)
	plain := cfg.NoAnimation || !isTerminal(stderr)

	var summary model.Summary
	if plain {
		printer.Header("Scanning %s", opts.Root)
		printer.Info("Looking for %s files with %d worker(s)", opts.Filename, opts.Workers)
		a.SetProgressCallback(func(e model.Entry, _ int) {
			e.Path = fs.Rel(e.Path)
			printer.Entry(e)
		})
		summary, err = a.Run(ctx)
		if err == nil {
			if ctx.Err() != nil {
				printer.Warning("Interrupted; files not yet started were left untouched")
			}
			printer.PrintSummary(summary)
		}
	} else {
		summary, err = tui.Run(ctx, a)
	}
	if err != nil {
		var de *app.DetailedError
		if errors.As(err, &de) {
			fmt.Fprintf(stderr, "\n--- Stack Trace ---\n%s\n", de.Stack)
		}
		if plain {
			printer.Error("Error: %v", err)
		}
		logger.Debug("Run aborted", "err", err)
		return 1
	}

	if cfg.Nvim {
		reloadNvim(logger, summary.Paths(model.Updated))
	}
	if cfg.Copy {
		if err := ui.CopySummary(summary); err != nil {
			logger.Warn("Could not copy summary", "err", err)
		}
	}
	return 0
}

// isTerminal reports whether w is an interactive terminal the TUI can own.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func reloadNvim(logger *log.Logger, paths []string) {
	if len(paths) == 0 {
		return
	}
	manager, err := nvim.New()
	if err != nil {
		logger.Warn("Skipping Neovim reload", "err", err)
		return
	}
	defer manager.Close()

	reloaded, failed := manager.ReloadBuffers(paths)
	logger.Info("Reloaded Neovim buffers", "count", len(reloaded))
	for _, p := range failed {
		logger.Warn("Failed to reload buffer", "path", p)
	}
}
