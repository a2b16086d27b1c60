// Package task runs blocking work off the UI goroutine and hands the
// outcome back on it.
//
// A Runner owns a background pool and a Dispatcher for the UI queue.
// Tasks submitted to it show a status line and a progress indicator,
// disable their controls, run their work on the pool, and then, on the
// UI goroutine, undo those effects and call exactly one of their
// callbacks. In synchronous mode the whole sequence happens on the
// calling goroutine before Submit returns, which is what tests use.
package task

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/nhle/mailagent/internal/apierr"
)

// Config holds the collaborators of a Runner.
type Config struct {
	// Synchronous runs work and completion inline inside Submit.
	Synchronous bool

	// Dispatcher marshals completions onto the UI goroutine. Required
	// unless Synchronous is set.
	Dispatcher Dispatcher

	Status   StatusSink
	Progress Indicator
	Alerter  Alerter
	Logger   *slog.Logger
}

// Runner executes tasks. It is safe to share, but Submit and the
// completion callbacks belong to the UI goroutine.
type Runner struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
	logger *slog.Logger

	active  atomic.Int32
	spawned atomic.Int64
}

// NewRunner creates a runner. ctx bounds all work: cancelling it, or
// calling Close, makes in-flight requests fail fast.
func NewRunner(ctx context.Context, cfg Config) *Runner {
	if !cfg.Synchronous && cfg.Dispatcher == nil {
		panic("task: asynchronous runner needs a Dispatcher")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Synchronous reports whether the runner executes tasks inline.
func (r *Runner) Synchronous() bool { return r.cfg.Synchronous }

// Active returns the number of tasks that have started but not finished.
func (r *Runner) Active() int { return int(r.active.Load()) }

// Spawned returns the number of background goroutines started so far.
func (r *Runner) Spawned() int64 { return r.spawned.Load() }

// Wait blocks until all background work has finished. Completions that
// were dispatched may still be queued on the UI goroutine.
func (r *Runner) Wait() { r.wg.Wait() }

// Close cancels outstanding work and waits for it to stop.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) begin(status string, controls []Control) {
	if status != "" && r.cfg.Status != nil {
		r.cfg.Status.ShowStatus(status)
	}
	if r.active.Add(1) == 1 && r.cfg.Progress != nil {
		r.cfg.Progress.SetVisible(true)
	}
	for _, c := range controls {
		c.SetDisabled(true)
	}
}

func (r *Runner) end(status string, controls []Control) {
	if r.active.Add(-1) == 0 && r.cfg.Progress != nil {
		r.cfg.Progress.SetVisible(false)
	}
	for _, c := range controls {
		c.SetDisabled(false)
	}
	if status != "" && r.cfg.Status != nil {
		r.cfg.Status.ClearStatus()
	}
}

// Alert shows the default failure alert for err. OnFailure callbacks
// call it when they handle a failure and still want it reported.
func (r *Runner) Alert(err *apierr.Error) {
	r.alert(err.UserFriendlyMessage())
}

func (r *Runner) alert(message string) {
	if r.cfg.Alerter == nil {
		r.logger.Error("unhandled task failure", "error", message)
		return
	}
	r.cfg.Alerter.Alert("Error", "An error occurred: "+message)
}

func (r *Runner) spawn(fn func()) {
	r.spawned.Add(1)
	r.wg.Go(fn)
}
