package report

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sokinpui/routepin/model"
)

// ErrDuplicate is returned when a path already has an outcome.
var ErrDuplicate = errors.New("outcome already recorded")

// Report accumulates per-file outcomes. It is safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	summary model.Summary
}

// New creates an empty Report.
func New() *Report {
	return &Report{seen: make(map[string]struct{})}
}

// Record appends one outcome for path.
func (r *Report) Record(path string, outcome model.Outcome, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}
	r.seen[path] = struct{}{}

	switch outcome {
	case model.Updated:
		r.summary.Updated++
	case model.SkippedPresent:
		r.summary.SkippedPresent++
	case model.SkippedNoAnchor:
		r.summary.SkippedNoAnchor++
	case model.Errored:
		r.summary.Errored++
	default:
		delete(r.seen, path)
		return fmt.Errorf("unknown outcome %d for %s", outcome, path)
	}
	r.summary.Entries = append(r.summary.Entries, model.Entry{Path: path, Outcome: outcome, Detail: detail})
	return nil
}

// Summarize returns the counts and a copy of the entries in record order.
func (r *Report) Summarize() model.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Entries = append([]model.Entry(nil), r.summary.Entries...)
	return s
}
