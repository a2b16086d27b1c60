// Package inbox is the message list view of one folder.
package inbox

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/keys"
	"github.com/nhle/mailagent/internal/theme"
)

// SelectedEmailMsg is sent when the user opens a message.
type SelectedEmailMsg struct {
	ID string
}

// Model is the message list of the current folder.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	labelID     string
	all         []backend.EmailMetadata
	query       string
	searchMode  bool
	searchInput textinput.Model
	disabled    bool
	loaded      bool
	offline     bool
	width       int
	height      int
}

// New creates an empty inbox for labelID.
func New(k *keys.KeyMap, labelID string, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search messages..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.SetLabel(labelID)
	return m
}

// Label returns the label ID shown.
func (m Model) Label() string { return m.labelID }

// SetLabel switches folders and clears the list until new data arrives.
func (m *Model) SetLabel(labelID string) {
	if labelID == "" {
		labelID = backend.LabelInbox
	}
	m.labelID = labelID
	m.list.Title = backend.FolderName(labelID)
	m.all = nil
	m.loaded = false
	m.offline = false
	m.list.SetItems(nil)
}

// SetEmails replaces the list. offline marks data served from the cache.
func (m *Model) SetEmails(emails []backend.EmailMetadata, offline bool) {
	m.all = emails
	m.loaded = true
	m.offline = offline
	m.refilter()
}

// Emails returns the messages currently held, unfiltered.
func (m Model) Emails() []backend.EmailMetadata { return m.all }

// Loaded reports whether any list has been set since the label changed.
func (m Model) Loaded() bool { return m.loaded }

// Offline reports whether the list came from the cache.
func (m Model) Offline() bool { return m.offline }

// Remove drops a message after it was archived or deleted.
func (m *Model) Remove(id string) {
	kept := m.all[:0:0]
	for _, e := range m.all {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.all = kept
	m.refilter()
}

// SetUnread adds or removes the UNREAD label of a message.
func (m *Model) SetUnread(id string, unread bool) {
	for i, e := range m.all {
		if e.ID != id {
			continue
		}
		labels := make([]string, 0, len(e.LabelIDs)+1)
		for _, l := range e.LabelIDs {
			if l != backend.LabelUnread {
				labels = append(labels, l)
			}
		}
		if unread {
			labels = append(labels, backend.LabelUnread)
		}
		m.all[i].LabelIDs = labels
	}
	m.refilter()
}

// Selected returns the highlighted message.
func (m Model) Selected() (backend.EmailMetadata, bool) {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return backend.EmailMetadata{}, false
	}
	return item.Email, true
}

// SetDisabled ignores action keys while a list operation is running.
func (m *Model) SetDisabled(disabled bool) { m.disabled = disabled }

// Disabled reports whether the list ignores actions.
func (m Model) Disabled() bool { return m.disabled }

// Searching reports whether the search bar has focus.
func (m Model) Searching() bool { return m.searchMode }

func (m *Model) refilter() {
	q := strings.ToLower(m.query)
	items := make([]list.Item, 0, len(m.all))
	for _, e := range m.all {
		it := EmailItem{Email: e}
		if q != "" && !strings.Contains(strings.ToLower(it.FilterValue()), q) {
			continue
		}
		items = append(items, it)
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.refilter()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.refilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if m.disabled {
			return m, nil
		}
		email, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedEmailMsg{ID: email.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when the folder has no messages.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.loaded:
		return style.Render("Loading " + backend.FolderName(m.labelID) + "...")
	case m.query != "":
		return style.Render("No matching messages.\nPress / and clear the search.")
	default:
		return style.Render(
			"No messages in " + backend.FolderName(m.labelID) + ".\n\n" +
				"Press r to refresh or : then type 'login'.",
		)
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
