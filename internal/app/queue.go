package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// dispatchMsg carries a function to run inside Update.
type dispatchMsg struct {
	fn func()
}

// Queue is the UI dispatch queue. Functions handed to Dispatch run one
// at a time inside the root model's Update, in the order they were
// dispatched. It implements task.Dispatcher.
type Queue struct {
	ch        chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue buffering up to size pending functions.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{
		ch:   make(chan func(), size),
		done: make(chan struct{}),
	}
}

// Dispatch enqueues fn. It blocks while the buffer is full and never
// drops fn unless the queue has been closed.
func (q *Queue) Dispatch(fn func()) {
	select {
	case q.ch <- fn:
	case <-q.done:
	}
}

// WaitForNext returns a tea.Cmd that delivers the next queued function.
// The root model issues it again after running each one.
func (q *Queue) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-q.ch:
			return dispatchMsg{fn: fn}
		case <-q.done:
			return nil
		}
	}
}

// Close releases goroutines blocked in Dispatch once the UI has exited.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
