// Package task runs one background operation at a time and reports how it
// ended exactly once.
package task

import (
	"context"
	"errors"
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/swpatch/swpatch/internal/logger"
)

// ErrBusy is returned by Start while a run is active
var ErrBusy = errors.New("a run is already in progress")

// Status is how a run ended
type Status int

const (
	Completed Status = iota
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Outcome is delivered once per run
type Outcome struct {
	Status Status
	Err    error // set when Status is Failed
}

// Func is the work of a run. It must return once ctx is done.
type Func func(ctx context.Context) error

// Runner serializes runs of one kind
type Runner struct {
	name string

	mu   sync.Mutex
	tomb *tomb.Tomb
}

// NewRunner creates a runner. name is used in log messages.
func NewRunner(name string) *Runner {
	return &Runner{name: name}
}

// Start runs fn in the background. The returned channel receives the
// outcome and is then closed.
func (r *Runner) Start(parent context.Context, fn Func) (<-chan Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tomb != nil {
		return nil, ErrBusy
	}

	t, ctx := tomb.WithContext(parent)
	r.tomb = t
	done := make(chan Outcome, 1)

	logger.Debugf("Starting %s run", r.name)
	t.Go(func() error {
		err := fn(ctx)

		r.mu.Lock()
		r.tomb = nil
		r.mu.Unlock()

		out := outcomeOf(err)
		logger.Debugf("%s run %s", r.name, out.Status)
		done <- out
		close(done)
		return err
	})

	return done, nil
}

// Cancel asks the active run to stop and waits for it to return. It does
// nothing when no run is active.
func (r *Runner) Cancel() {
	r.mu.Lock()
	t := r.tomb
	r.mu.Unlock()

	if t == nil {
		return
	}
	t.Kill(nil)
	t.Wait()
}

// Running reports whether a run is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tomb != nil
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Status: Completed}
	case errors.Is(err, context.Canceled):
		return Outcome{Status: Cancelled}
	default:
		return Outcome{Status: Failed, Err: err}
	}
}
