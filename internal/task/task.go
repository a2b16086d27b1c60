package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/result"
)

// ErrAlreadyStarted is returned when a task is started a second time.
var ErrAlreadyStarted = errors.New("task already started")

// State is the lifecycle position of a task.
type State int32

const (
	StateReady State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether s is Succeeded or Failed.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Spec describes one user operation.
type Spec[T any] struct {
	// Name identifies the task in logs.
	Name string

	// Status is shown while the task runs. Empty leaves the status line
	// alone.
	Status string

	// Work runs on the background pool, or inline in synchronous mode.
	Work func(ctx context.Context) result.Result[T]

	// OnSuccess and OnFailure run on the UI goroutine. A nil OnFailure
	// shows the default error alert.
	OnSuccess func(T)
	OnFailure func(*apierr.Error)

	// Disable lists controls to disable while the task runs.
	Disable []Control
}

// Task is a single run of a Spec. It cannot be reused.
type Task[T any] struct {
	id    uuid.UUID
	spec  Spec[T]
	state atomic.Int32
	done  chan struct{}
	res   result.Result[T]
}

// New creates a task in the Ready state.
func New[T any](spec Spec[T]) *Task[T] {
	return &Task[T]{
		id:   uuid.New(),
		spec: spec,
		done: make(chan struct{}),
	}
}

// Submit creates a task from spec and starts it on r.
func Submit[T any](r *Runner, spec Spec[T]) *Task[T] {
	t := New(spec)
	// A fresh task is always Ready.
	_ = t.Start(r)
	return t
}

func (t *Task[T]) ID() uuid.UUID { return t.id }

func (t *Task[T]) State() State { return State(t.state.Load()) }

// Done is closed once the task is terminal, after its callback ran.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Result returns the outcome of the work. It is only meaningful after
// Done is closed.
func (t *Task[T]) Result() result.Result[T] {
	select {
	case <-t.done:
		return t.res
	default:
		return result.Failure[T](apierr.New("task has not finished", 0, nil))
	}
}

// Start moves the task from Ready to Running and launches its work.
func (t *Task[T]) Start(r *Runner) error {
	if !t.state.CompareAndSwap(int32(StateReady), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	r.begin(t.spec.Status, t.spec.Disable)
	r.logger.Debug("task started", "task", t.spec.Name, "id", t.id)

	if r.cfg.Synchronous {
		t.complete(r, t.execute(r.ctx))
		return nil
	}

	r.spawn(func() {
		res := t.execute(r.ctx)
		r.cfg.Dispatcher.Dispatch(func() { t.complete(r, res) })
	})
	return nil
}

// execute runs the work, turning a panic into a failure.
func (t *Task[T]) execute(ctx context.Context) (res result.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = result.Failure[T](apierr.New(fmt.Sprintf("task panicked: %v", p), 0, map[string]any{
				"stack": string(debug.Stack()),
			}))
		}
	}()
	if t.spec.Work == nil {
		return result.Failure[T](apierr.New("task has no work", 0, nil))
	}
	return t.spec.Work(ctx)
}

// complete runs on the UI goroutine: it restores the UI, calls one
// callback and only then makes the task terminal. A panicking callback
// leaves the task Failed with a failure result.
func (t *Task[T]) complete(r *Runner, res result.Result[T]) {
	final := StateFailed
	if res.IsSuccess() {
		final = StateSucceeded
	}
	t.res = res

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("task callback panicked",
				"task", t.spec.Name, "id", t.id, "panic", p)
			final = StateFailed
			t.res = result.Failure[T](apierr.New(fmt.Sprintf("task callback panicked: %v", p), 0, nil))
		}
		t.state.Store(int32(final))
		close(t.done)
	}()

	r.end(t.spec.Status, t.spec.Disable)

	if v, ok := res.Data(); ok {
		r.logger.Debug("task succeeded", "task", t.spec.Name, "id", t.id)
		if t.spec.OnSuccess != nil {
			t.spec.OnSuccess(v)
		}
		return
	}

	err := res.Err()
	r.logger.Warn("task failed",
		"task", t.spec.Name, "id", t.id,
		"category", err.Category(), "error", err.Message())
	if t.spec.OnFailure != nil {
		t.spec.OnFailure(err)
		return
	}
	r.alert(err.UserFriendlyMessage())
}
