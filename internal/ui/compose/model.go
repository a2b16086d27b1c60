// Package compose is the form for writing new messages and replies.
package compose

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/theme"
)

// SendMsg is dispatched when the user submits the form to send.
type SendMsg struct {
	Draft   backend.Draft
	DraftID string
}

// SaveDraftMsg is dispatched when the user keeps the message as a draft.
type SaveDraftMsg struct {
	Draft   backend.Draft
	DraftID string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	to      string
	subject string
	body    string
	send    bool
}

// Model is the compose form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	replyTo  string
	draftID  string
	title    string
	disabled bool
	width    int
	height   int
}

// New creates an idle compose form.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{send: true},
		width:  width,
		height: height,
	}
}

// StartNew opens an empty message with the signature appended.
func (m *Model) StartNew(signature string) tea.Cmd {
	return m.start("New Message", backend.Draft{Body: SignatureBlock(signature)}, "")
}

// StartReply opens a reply to e, prefilled with suggestion.
func (m *Model) StartReply(e backend.EmailDetails, suggestion, signature string) tea.Cmd {
	return m.start("Reply", ReplyDraft(e, suggestion, signature), "")
}

// StartDraft reopens a locally saved draft.
func (m *Model) StartDraft(id string, d backend.Draft) tea.Cmd {
	return m.start("Draft", d, id)
}

func (m *Model) start(title string, d backend.Draft, draftID string) tea.Cmd {
	m.title = title
	m.replyTo = d.ReplyTo
	m.draftID = draftID
	m.disabled = false
	m.fb.to = d.To
	m.fb.subject = d.Subject
	m.fb.body = d.Body
	m.fb.send = true
	m.form = m.buildForm()
	return m.form.Init()
}

// Draft returns the message as currently entered.
func (m Model) Draft() backend.Draft {
	return backend.Draft{
		To:      strings.TrimSpace(m.fb.to),
		Subject: m.fb.subject,
		Body:    m.fb.body,
		ReplyTo: m.replyTo,
	}
}

// SetDisabled ignores input while the message is being sent.
func (m *Model) SetDisabled(disabled bool) { m.disabled = disabled }

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok && m.disabled {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := m.title
	if m.disabled {
		title += " (sending...)"
	}
	content := titleStyle.Render(title) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("name@example.com, other@example.com").
				Value(&m.fb.to).
				Validate(ValidateRecipients),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject).
				Validate(validateRequired("Subject")),
			huh.NewText().
				Title("Body").
				Lines(m.bodyLines()).
				Value(&m.fb.body),
			huh.NewConfirm().
				Title("Send now?").
				Affirmative("Send").
				Negative("Save draft").
				Value(&m.fb.send),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	d := m.Draft()
	id := m.draftID
	if m.fb.send {
		return func() tea.Msg { return SendMsg{Draft: d, DraftID: id} }
	}
	return func() tea.Msg { return SaveDraftMsg{Draft: d, DraftID: id} }
}

func (m Model) bodyLines() int {
	return max(m.height-16, 5)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
