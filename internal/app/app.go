package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/sokinpui/routepin/internal/config"
	"github.com/sokinpui/routepin/internal/fs"
	"github.com/sokinpui/routepin/internal/patcher"
	"github.com/sokinpui/routepin/internal/report"
	"github.com/sokinpui/routepin/model"
)

// ProgressFunc is called once per file, after its outcome is recorded.
// Calls are serialized.
type ProgressFunc func(e model.Entry, done int)

// App runs the discover-detect-patch pipeline over one tree.
type App struct {
	opts     *config.Options
	injector *patcher.Injector
	logger   *log.Logger
	progress ProgressFunc

	discover  func(root, name string) (iter.Seq2[string, error], error)
	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte) error
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error { return e.Err }

// New validates opts and creates an App.
func New(opts *config.Options, logger *log.Logger) (*App, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &App{
		opts: opts,
		injector: &patcher.Injector{
			Detector:  patcher.Detector{Marker: opts.EffectiveMarker()},
			Locator:   patcher.NewLocator(opts.Anchors),
			Directive: opts.Directive,
		},
		logger:    logger,
		discover:  fs.Discover,
		readFile:  fs.ReadFile,
		writeFile: fs.WriteAtomic,
	}, nil
}

// SetProgressCallback sets a function to be called for every file outcome.
func (a *App) SetProgressCallback(cb ProgressFunc) {
	a.progress = cb
}

// Run processes every matching file below the configured root. Only a
// DiscoveryError (or a recovered panic) is returned as an error; per-file
// failures are part of the summary. Cancelling ctx stops new files from
// being started.
func (a *App) Run(ctx context.Context) (summary model.Summary, err error) {
	// Centralized panic recovery to provide stack traces for unexpected errors.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	paths, err := a.discover(a.opts.Root, a.opts.Filename)
	if err != nil {
		return model.Summary{}, err
	}
	a.logger.Debug("scanning", "root", a.opts.Root, "filename", a.opts.Filename, "workers", a.opts.Workers)

	rep := report.New()
	var (
		mu   sync.Mutex
		done int
	)
	record := func(path string, outcome model.Outcome, detail string) {
		if err := rep.Record(path, outcome, detail); err != nil {
			a.logger.Debug("dropping outcome", "path", path, "err", err)
			return
		}
		if a.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		a.progress(model.Entry{Path: path, Outcome: outcome, Detail: detail}, done)
	}

	process := func(path string) {
		outcome, detail := a.safeProcessFile(path)
		record(path, outcome, detail)
	}

	g := new(errgroup.Group)
	g.SetLimit(a.opts.Workers)

	for path, walkErr := range paths {
		if ctx.Err() != nil {
			break
		}
		if walkErr != nil {
			record(path, model.Errored, walkErr.Error())
			continue
		}
		// A single worker keeps entries in discovery order.
		if a.opts.Workers == 1 {
			process(path)
			continue
		}
		g.Go(func() error {
			process(path)
			return nil
		})
	}
	_ = g.Wait()

	return rep.Summarize(), nil
}

// safeProcessFile turns a panic while handling one file into an error
// outcome for that file.
func (a *App) safeProcessFile(path string) (outcome model.Outcome, detail string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic while processing file", "path", path, "panic", r, "stack", string(debug.Stack()))
			outcome, detail = model.Errored, fmt.Sprintf("internal panic: %v", r)
		}
	}()
	return a.processFile(path)
}

// processFile takes one file through read, detect, locate, patch and write.
func (a *App) processFile(path string) (model.Outcome, string) {
	text, err := a.readFile(path)
	if err != nil {
		a.logger.Debug("read failed", "path", path, "err", err)
		return model.Errored, err.Error()
	}

	plan, err := a.injector.Plan(text)
	if err != nil {
		return model.Errored, err.Error()
	}
	if plan.Outcome != model.Updated {
		a.logger.Debug("skipped", "path", path, "outcome", plan.Outcome)
		return plan.Outcome, ""
	}

	if err := a.writeFile(path, plan.Content); err != nil {
		var we *fs.WriteError
		if errors.As(err, &we) {
			a.logger.Debug("write failed, original kept", "path", path, "err", we.Err)
		}
		return model.Errored, err.Error()
	}

	a.logger.Debug("patched", "path", path, "variant", plan.Anchor.Variant, "line", plan.Anchor.Line)
	return model.Updated, fmt.Sprintf("before %s, line %d", plan.Anchor.Variant, plan.Anchor.Line)
}
