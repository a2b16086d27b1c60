package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Folders
	FolderInbox   key.Binding
	FolderStarred key.Binding
	FolderSent    key.Binding
	FolderDrafts  key.Binding
	FolderSpam    key.Binding
	FolderTrash   key.Binding

	// Message actions
	Compose     key.Binding
	Reply       key.Binding
	Archive     key.Binding
	Delete      key.Binding
	ToggleRead  key.Binding
	Suggestions key.Binding

	// Settings form
	Settings key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open message"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		FolderInbox: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "inbox"),
		),
		FolderStarred: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "starred"),
		),
		FolderSent: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sent"),
		),
		FolderDrafts: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "drafts"),
		),
		FolderSpam: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "spam"),
		),
		FolderTrash: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "trash"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compose"),
		),
		Reply: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reply"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toggle read"),
		),
		Suggestions: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest replies"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
	}
}

// Folders returns the folder keys in display order.
func (k *KeyMap) Folders() []key.Binding {
	return []key.Binding{
		k.FolderInbox, k.FolderStarred, k.FolderSent,
		k.FolderDrafts, k.FolderSpam, k.FolderTrash,
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Compose, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Command, k.Help, k.Refresh, k.Settings},
		{k.FolderInbox, k.FolderStarred, k.FolderSent, k.FolderDrafts, k.FolderSpam, k.FolderTrash},
		{k.Compose, k.Reply, k.Archive, k.Delete, k.ToggleRead, k.Suggestions},
	}
}
