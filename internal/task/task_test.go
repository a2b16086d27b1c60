package task

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/result"
)

type fakeUI struct {
	mu       sync.Mutex
	events   []string
	alerts   []string
	visible  bool
	disabled bool
}

func (f *fakeUI) record(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeUI) ShowStatus(msg string) { f.record("status:" + msg) }
func (f *fakeUI) ClearStatus()          { f.record("status:clear") }
func (f *fakeUI) SetVisible(v bool) {
	f.visible = v
	if v {
		f.record("progress:on")
	} else {
		f.record("progress:off")
	}
}
func (f *fakeUI) SetDisabled(d bool) {
	f.disabled = d
	if d {
		f.record("control:off")
	} else {
		f.record("control:on")
	}
}
func (f *fakeUI) Alert(title, msg string) {
	f.alerts = append(f.alerts, title+": "+msg)
}

// queue is a Dispatcher backed by a channel, drained by the test.
type queue struct {
	ch chan func()
}

func newQueue() *queue { return &queue{ch: make(chan func(), 16)} }

func (q *queue) Dispatch(fn func()) { q.ch <- fn }

func (q *queue) drain(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case fn := <-q.ch:
			fn()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d of %d", i+1, n)
		}
	}
}

// panicDispatcher fails the test if anything is dispatched.
type panicDispatcher struct{ t *testing.T }

func (p panicDispatcher) Dispatch(func()) { p.t.Fatal("synchronous runner dispatched") }

func TestSynchronousFailureBeforeSubmitReturns(t *testing.T) {
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{
		Synchronous: true,
		Dispatcher:  panicDispatcher{t},
		Status:      ui,
		Progress:    ui,
		Alerter:     ui,
	})

	var got *apierr.Error
	tk := Submit(r, Spec[string]{
		Name:   "load",
		Status: "Loading...",
		Work: func(ctx context.Context) result.Result[string] {
			return result.Failure[string](apierr.NotFound("Email"))
		},
		OnSuccess: func(string) { t.Fatal("OnSuccess called for a failure") },
		OnFailure: func(err *apierr.Error) { got = err },
		Disable:   []Control{ui},
	})

	if got == nil || got.Code() != 404 {
		t.Fatalf("OnFailure not called before Submit returned, got %v", got)
	}
	if tk.State() != StateFailed {
		t.Fatalf("state = %s", tk.State())
	}
	if r.Spawned() != 0 {
		t.Fatalf("synchronous mode used the pool: %d goroutines", r.Spawned())
	}
	select {
	case <-tk.Done():
	default:
		t.Fatal("Done not closed")
	}

	want := []string{
		"status:Loading...", "progress:on", "control:off",
		"progress:off", "control:on", "status:clear",
	}
	if strings.Join(ui.events, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", ui.events, want)
	}
}

func TestSynchronousSuccessDisablesControlsDuringWork(t *testing.T) {
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{Synchronous: true, Progress: ui})

	var during, visible bool
	var value int
	tk := Submit(r, Spec[int]{
		Work: func(ctx context.Context) result.Result[int] {
			during, visible = ui.disabled, ui.visible
			return result.Success(7)
		},
		OnSuccess: func(v int) { value = v },
		Disable:   []Control{ui},
	})

	if !during || !visible {
		t.Fatalf("during work: disabled=%v visible=%v", during, visible)
	}
	if ui.disabled || ui.visible {
		t.Fatal("control or progress not restored")
	}
	if value != 7 || tk.State() != StateSucceeded {
		t.Fatalf("value=%d state=%s", value, tk.State())
	}
	if v, _ := tk.Result().Data(); v != 7 {
		t.Fatalf("Result() = %v", v)
	}
}

func TestAsynchronousCompletesOnDispatcher(t *testing.T) {
	q := newQueue()
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{Dispatcher: q, Progress: ui, Status: ui})
	defer r.Close()

	release := make(chan struct{})
	var called bool
	tk := Submit(r, Spec[string]{
		Status: "Sending...",
		Work: func(ctx context.Context) result.Result[string] {
			<-release
			return result.Success("sent")
		},
		OnSuccess: func(s string) { called = s == "sent" },
	})

	if tk.State() != StateRunning {
		t.Fatalf("state after Submit = %s", tk.State())
	}
	close(release)
	r.Wait()

	if called || tk.State() != StateRunning {
		t.Fatal("completion ran off the UI queue")
	}
	if !ui.visible {
		t.Fatal("progress hidden before completion was dispatched")
	}

	q.drain(t, 1)

	if !called {
		t.Fatal("OnSuccess not called")
	}
	if tk.State() != StateSucceeded {
		t.Fatalf("state = %s", tk.State())
	}
	if ui.visible {
		t.Fatal("progress still visible")
	}
	if r.Spawned() != 1 {
		t.Fatalf("spawned = %d", r.Spawned())
	}
}

func TestProgressStaysVisibleWhileAnyTaskRuns(t *testing.T) {
	q := newQueue()
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{Dispatcher: q, Progress: ui})
	defer r.Close()

	work := func(ctx context.Context) result.Result[int] { return result.Success(1) }
	Submit(r, Spec[int]{Work: work})
	Submit(r, Spec[int]{Work: work})
	r.Wait()

	q.drain(t, 1)
	if !ui.visible {
		t.Fatal("progress hidden while a task is still pending")
	}
	q.drain(t, 1)
	if ui.visible || r.Active() != 0 {
		t.Fatalf("visible=%v active=%d", ui.visible, r.Active())
	}
}

func TestDefaultFailureAlert(t *testing.T) {
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{Synchronous: true, Alerter: ui})

	Submit(r, Spec[int]{
		Work: func(ctx context.Context) result.Result[int] {
			return result.Failure[int](apierr.Unauthorized())
		},
	})

	want := "Error: An error occurred: Authentication error. Please log in again."
	if len(ui.alerts) != 1 || ui.alerts[0] != want {
		t.Fatalf("alerts = %v", ui.alerts)
	}
}

func TestCustomFailureCanReuseDefaultAlert(t *testing.T) {
	ui := &fakeUI{}
	r := NewRunner(context.Background(), Config{Synchronous: true, Alerter: ui})

	handled := false
	Submit(r, Spec[int]{
		Work: func(ctx context.Context) result.Result[int] {
			return result.Failure[int](apierr.NetworkDefault())
		},
		OnFailure: func(err *apierr.Error) {
			handled = true
			r.Alert(err)
		},
	})

	want := "Error: An error occurred: Network connection issue. Please check your internet connection."
	if !handled || len(ui.alerts) != 1 || ui.alerts[0] != want {
		t.Fatalf("handled=%v alerts=%v", handled, ui.alerts)
	}
}

func TestPanicInWorkBecomesFailure(t *testing.T) {
	for _, synchronous := range []bool{true, false} {
		q := newQueue()
		r := NewRunner(context.Background(), Config{Synchronous: synchronous, Dispatcher: q})

		var got *apierr.Error
		tk := Submit(r, Spec[int]{
			Work:      func(ctx context.Context) result.Result[int] { panic("boom") },
			OnFailure: func(err *apierr.Error) { got = err },
		})
		if !synchronous {
			q.drain(t, 1)
		}
		r.Close()

		if got == nil || !strings.Contains(got.Message(), "boom") {
			t.Fatalf("sync=%v: OnFailure got %v", synchronous, got)
		}
		if tk.State() != StateFailed {
			t.Fatalf("sync=%v: state = %s", synchronous, tk.State())
		}
	}
}

func TestPanicInCallbackFailsTaskAndResult(t *testing.T) {
	r := NewRunner(context.Background(), Config{Synchronous: true})

	tk := Submit(r, Spec[int]{
		Work:      func(ctx context.Context) result.Result[int] { return result.Success(7) },
		OnSuccess: func(int) { panic("render failed") },
	})

	if tk.State() != StateFailed {
		t.Fatalf("state = %s", tk.State())
	}
	res := tk.Result()
	if res.IsSuccess() {
		t.Fatal("Result() reports success for a failed task")
	}
	if !strings.Contains(res.Err().Message(), "render failed") {
		t.Fatalf("Result() error = %v", res.Err())
	}
}

func TestStartTwiceRejected(t *testing.T) {
	r := NewRunner(context.Background(), Config{Synchronous: true})
	tk := New(Spec[int]{Work: func(ctx context.Context) result.Result[int] { return result.Success(1) }})

	if err := tk.Start(r); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := tk.Start(r); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start = %v", err)
	}
}

func TestCloseCancelsWork(t *testing.T) {
	q := newQueue()
	r := NewRunner(context.Background(), Config{Dispatcher: q})

	var got *apierr.Error
	Submit(r, Spec[int]{
		Work: func(ctx context.Context) result.Result[int] {
			<-ctx.Done()
			return result.FromError[int](ctx.Err())
		},
		OnFailure: func(err *apierr.Error) { got = err },
	})
	r.Close()
	q.drain(t, 1)

	if got == nil {
		t.Fatal("expected failure after Close")
	}
}

func TestAsyncRunnerNeedsDispatcher(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRunner(context.Background(), Config{})
}
