// Package reader shows one message with its reply suggestions.
package reader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/keys"
	"github.com/nhle/mailagent/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// SuggestMsg asks the parent to load reply suggestions for EmailID.
type SuggestMsg struct {
	EmailID string
}

// ReplyMsg asks the parent to open a reply. Suggestion is empty for a
// plain reply.
type ReplyMsg struct {
	Email      backend.EmailDetails
	Suggestion string
}

// maxSuggestions is how many suggestions can be picked with digit keys.
const maxSuggestions = 9

// Model is the message reader.
type Model struct {
	email       *backend.EmailDetails
	threadCount int
	suggestions []string
	viewport    viewport.Model
	keys        *keys.KeyMap
	width       int
	height      int
	loading     bool
	disabled    bool
}

// New creates an empty reader.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the reader.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Suggestions):
			if m.email != nil && !m.disabled {
				id := m.email.ID
				return m, func() tea.Msg {
					return SuggestMsg{EmailID: id}
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Reply):
			if m.email != nil {
				email := *m.email
				return m, func() tea.Msg {
					return ReplyMsg{Email: email}
				}
			}
			return m, nil
		}

		if s, ok := m.pick(msg.String()); ok {
			email := *m.email
			return m, func() tea.Msg {
				return ReplyMsg{Email: email, Suggestion: s}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// pick maps a digit key to a loaded suggestion.
func (m Model) pick(k string) (string, bool) {
	if m.email == nil || len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return "", false
	}
	i := int(k[0] - '1')
	if i >= len(m.suggestions) {
		return "", false
	}
	return m.suggestions[i], true
}

// View renders the reader.
func (m Model) View() string {
	if m.loading || m.email == nil {
		text := "No message selected"
		if m.loading {
			text = "Loading message..."
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text)
	}

	return m.viewport.View()
}

// renderContent builds the full message content string for the viewport.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}

	email := m.email
	var sections []string

	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(subject))

	var badges []string
	for _, l := range email.Labels {
		badges = append(badges, theme.LabelStyle(l).Render(backend.FolderName(l)))
	}
	if len(badges) > 0 {
		sections = append(sections, strings.Join(badges, " "))
	}
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s", metaStyle.Render("From:"), valStyle.Render(email.From),
	))
	if len(email.Recipients) > 0 {
		sections = append(sections, fmt.Sprintf(
			"%s    %s", metaStyle.Render("To:"),
			valStyle.Render(strings.Join(email.Recipients, ", ")),
		))
	}
	if date, ok := email.Metadata["date"].(string); ok && date != "" {
		sections = append(sections, fmt.Sprintf(
			"%s  %s", metaStyle.Render("Date:"), valStyle.Render(date),
		))
	}
	if m.threadCount > 1 {
		sections = append(sections, metaStyle.Render(
			fmt.Sprintf("%d messages in this thread", m.threadCount),
		))
	}
	if n := len(email.AttachmentIDs); n > 0 {
		sections = append(sections, metaStyle.Render(
			fmt.Sprintf("%d attachment(s)", n),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	body := PlainBody(*email)
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	sections = append(sections, body)

	if len(m.suggestions) > 0 {
		sections = append(sections, "", separator, "")
		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta)
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Suggested replies (%d)", len(m.suggestions)),
		))
		sections = append(sections, "")

		numStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		for i, s := range m.suggestions {
			if i >= maxSuggestions {
				break
			}
			sections = append(sections,
				numStyle.Render(fmt.Sprintf("[%d]", i+1))+" "+CleanSuggestion(s), "")
		}
		sections = append(sections, theme.HelpStyle.Render("Press a number to reply with that suggestion."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) rerender() {
	m.viewport.SetContent(m.renderContent())
}

// SetEmail shows a message and clears suggestions from the previous one.
func (m *Model) SetEmail(email backend.EmailDetails) {
	m.email = &email
	m.threadCount = 0
	m.suggestions = nil
	m.loading = false
	m.rerender()
	m.viewport.GotoTop()
}

// Email returns the message shown, if any.
func (m Model) Email() (backend.EmailDetails, bool) {
	if m.email == nil {
		return backend.EmailDetails{}, false
	}
	return *m.email, true
}

// SetThreadCount records how many messages share the thread.
func (m *Model) SetThreadCount(n int) {
	m.threadCount = n
	m.rerender()
}

// SetSuggestions shows reply suggestions for emailID. Suggestions for a
// message that is no longer shown are ignored.
func (m *Model) SetSuggestions(emailID string, suggestions []string) {
	if m.email == nil || m.email.ID != emailID {
		return
	}
	m.suggestions = suggestions
	m.rerender()
}

// Suggestions returns the suggestions shown.
func (m Model) Suggestions() []string { return m.suggestions }

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetDisabled blocks suggestion requests while one is running.
func (m *Model) SetDisabled(disabled bool) { m.disabled = disabled }

// SetSize updates the reader dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.rerender()
}
