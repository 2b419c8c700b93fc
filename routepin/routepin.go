package routepin

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/sokinpui/routepin/internal/app"
	"github.com/sokinpui/routepin/internal/config"
	"github.com/sokinpui/routepin/model"
)

// Options for using routepin as a library. Zero values take the defaults of
// the command line tool.
type Options struct {
	// Directory to walk. Defaults to "app/api".
	Root string
	// Exact file name to patch. Defaults to "route.ts".
	Filename string
	// Line to insert before the first anchor.
	Directive string
	// Substring whose presence means the directive is already applied.
	// Defaults to the directive text before its first '='.
	Marker string
	// Line-start signatures that mark the insertion point.
	Anchors []string
	// Number of files processed in parallel. Defaults to 1.
	Workers int
	// Optional diagnostics logger.
	Logger *log.Logger
	// Optional per-file callback.
	OnFile func(model.Entry)
}

// Inject inserts the directive into every matching file below Options.Root
// and returns the per-file outcomes. The returned error is non-nil only when
// the options are invalid or the root cannot be scanned.
func Inject(ctx context.Context, opts Options) (model.Summary, error) {
	cfg := config.Default()
	if opts.Root != "" {
		cfg.Root = opts.Root
	}
	if opts.Filename != "" {
		cfg.Filename = opts.Filename
	}
	if opts.Directive != "" {
		cfg.Directive = opts.Directive
	}
	if opts.Marker != "" {
		cfg.Marker = opts.Marker
	}
	if len(opts.Anchors) > 0 {
		cfg.Anchors = append([]string(nil), opts.Anchors...)
	}
	if opts.Workers != 0 {
		cfg.Workers = opts.Workers
	}

	a, err := app.New(cfg, opts.Logger)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize routepin: %w", err)
	}
	if opts.OnFile != nil {
		a.SetProgressCallback(func(e model.Entry, _ int) { opts.OnFile(e) })
	}
	return a.Run(ctx)
}
