// Package status renders the bottom status line: the busy spinner and
// message of running tasks, transient notices, and error alerts.
package status

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/theme"
)

// Model holds status line state. All methods must be called on the UI
// goroutine; it is handed to the task runner as its indicator, status
// sink and alerter.
type Model struct {
	spinner    spinner.Model
	visible    bool
	ticking    bool
	busy       string
	notice     string
	alertTitle string
	alert      string
}

// New creates an idle status line.
func New() *Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	return &Model{spinner: s}
}

// SetVisible shows or hides the progress spinner.
func (m *Model) SetVisible(visible bool) {
	m.visible = visible
}

// Visible reports whether the spinner is shown.
func (m *Model) Visible() bool { return m.visible }

// ShowStatus sets the busy message of a running task.
func (m *Model) ShowStatus(message string) {
	m.busy = message
}

// ClearStatus removes the busy message.
func (m *Model) ClearStatus() {
	m.busy = ""
}

// Alert shows an error until it is dismissed.
func (m *Model) Alert(title, message string) {
	m.alertTitle = title
	m.alert = message
}

// Notify shows a short informational notice, replacing any previous one.
func (m *Model) Notify(message string) {
	m.notice = message
}

// Dismiss clears the alert and notice.
func (m *Model) Dismiss() {
	m.alert = ""
	m.alertTitle = ""
	m.notice = ""
}

func (m *Model) Busy() string   { return m.busy }
func (m *Model) Notice() string { return m.notice }
func (m *Model) AlertText() string {
	return m.alert
}

// Cmd returns the spinner tick when the spinner just became visible.
// The root model calls it after every update.
func (m *Model) Cmd() tea.Cmd {
	if !m.visible || m.ticking {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

// Update advances the spinner. Ticks stop once it is hidden.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	if !m.visible {
		m.ticking = false
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}

var (
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
	noticeStyle = lipgloss.NewStyle().Foreground(theme.ColorGreen)
	busyStyle   = lipgloss.NewStyle().Foreground(theme.ColorYellow)
)

// View renders the status text, or "" when there is nothing to show.
// Alerts win over busy messages, which win over notices.
func (m *Model) View() string {
	switch {
	case m.alert != "":
		return alertStyle.Render(m.alertTitle + ": " + m.alert)
	case m.visible:
		text := m.busy
		if text == "" {
			text = "Working..."
		}
		return m.spinner.View() + " " + busyStyle.Render(text)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return ""
	}
}
