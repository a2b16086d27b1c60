// Package monitor polls the backend's auth and health endpoints in the
// background and feeds the results to the UI as tea messages.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/result"
)

// Checker is the part of the backend client the monitor needs.
type Checker interface {
	CheckAuthStatus(ctx context.Context) result.Result[bool]
	BackendStatus(ctx context.Context) result.Result[backend.Status]
}

// StatusMsg is a tea.Msg describing one health check.
type StatusMsg struct {
	// Reachable is true when at least one endpoint answered.
	Reachable bool

	// Authenticated comes from /auth/status when that call succeeded,
	// otherwise from /status.
	Authenticated bool

	// AIStatus is the local AI service state reported by /status.
	AIStatus string

	// Err is the first failure of the check, if any.
	Err *apierr.Error

	CheckedAt time.Time
}

// checkTimeout bounds one full check including retries.
const checkTimeout = 90 * time.Second

// Monitor checks backend health on an interval and on demand.
type Monitor struct {
	checker   Checker
	interval  time.Duration
	logger    *slog.Logger
	resultCh  chan StatusMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        sync.Mutex
	running   bool
	last      StatusMsg
}

// New creates a monitor. A non-positive interval means 30 seconds.
func New(checker Checker, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		checker:   checker,
		interval:  interval,
		logger:    logger,
		resultCh:  make(chan StatusMsg, 1),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that
// delivers the first StatusMsg.
func (m *Monitor) Start() tea.Cmd {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.mu.Unlock()

	go m.loop()

	return m.waitForResult()
}

// Stop halts the polling goroutine.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	close(m.stopCh)
	m.running = false
}

// Refresh requests an immediate check. Requests made while one is
// already pending are merged.
func (m *Monitor) Refresh() {
	select {
	case m.triggerCh <- struct{}{}:
	default:
	}
}

// Last returns the most recent status.
func (m *Monitor) Last() StatusMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.publish(m.Check(context.Background()))

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.publish(m.Check(context.Background()))
		case <-m.triggerCh:
			m.publish(m.Check(context.Background()))
		}
	}
}

// Check performs one auth check followed by one health check.
func (m *Monitor) Check(ctx context.Context) StatusMsg {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	msg := StatusMsg{CheckedAt: time.Now()}

	auth := m.checker.CheckAuthStatus(ctx)
	authed, authOK := auth.Data()
	if authOK {
		msg.Reachable = true
		msg.Authenticated = authed
	} else {
		msg.Err = auth.Err()
	}

	status := m.checker.BackendStatus(ctx)
	if s, ok := status.Data(); ok {
		msg.Reachable = true
		msg.AIStatus = s.LocalAIServiceStatus
		if !authOK {
			msg.Authenticated = s.GmailAuthenticated
		}
	} else if msg.Err == nil {
		msg.Err = status.Err()
	}

	if msg.Err != nil {
		m.logger.Warn("backend status check failed",
			"category", msg.Err.Category(), "error", msg.Err.Message())
	}
	return msg
}

func (m *Monitor) publish(msg StatusMsg) {
	m.mu.Lock()
	m.last = msg
	m.mu.Unlock()

	// Only the newest status is kept pending. publish is only called from
	// the loop goroutine, so after evicting the pending one the send
	// cannot block.
	for {
		select {
		case m.resultCh <- msg:
			return
		default:
		}
		select {
		case <-m.resultCh:
		default:
		}
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (m *Monitor) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.resultCh:
			return msg
		case <-m.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next status.
// Call it after handling a StatusMsg to keep listening.
func (m *Monitor) WaitForNextResult() tea.Cmd {
	return m.waitForResult()
}
