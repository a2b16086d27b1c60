// Package command is the ":" palette for actions without a key of their
// own.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args []string
}

// Arg returns the i-th argument or "".
func (c CommandMsg) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Spec documents one palette command.
type Spec struct {
	Name  string
	Usage string
	Help  string
}

// Commands lists what the palette understands, in display order.
var Commands = []Spec{
	{"refresh", "refresh", "reload the current folder"},
	{"folder", "folder <label>", "open a folder, e.g. folder SENT"},
	{"compose", "compose", "write a new message"},
	{"drafts", "drafts", "reopen the newest saved draft"},
	{"login", "login", "start the Gmail login flow"},
	{"status", "status", "check the backend now"},
	{"settings", "settings", "edit AI and signature settings"},
	{"token", "token <key>", "store the backend API key"},
	{"forget-token", "forget-token", "remove the stored API key"},
	{"quit", "quit", "exit mailagent"},
}

// Parse splits a command line into its name and arguments. Names are
// case-insensitive.
func Parse(line string) (CommandMsg, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		line := m.input.Value()
		m.input.Reset()
		if c, ok := Parse(line); ok {
			return m, func() tea.Msg { return c }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette with the commands matching the input.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View(), ""}

	prefix := strings.ToLower(strings.TrimSpace(m.input.Value()))
	usageStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(20)
	for _, c := range Commands {
		if prefix != "" && !strings.HasPrefix(c.Name, strings.Fields(prefix)[0]) {
			continue
		}
		lines = append(lines, usageStyle.Render(c.Usage)+theme.HelpStyle.Render(c.Help))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
