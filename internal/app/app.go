// Package app is the root Bubble Tea model of mailagent. It routes keys
// and messages between views and turns user actions into tasks.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/config"
	"github.com/nhle/mailagent/internal/credential"
	"github.com/nhle/mailagent/internal/keys"
	"github.com/nhle/mailagent/internal/monitor"
	"github.com/nhle/mailagent/internal/result"
	"github.com/nhle/mailagent/internal/store"
	"github.com/nhle/mailagent/internal/task"
	"github.com/nhle/mailagent/internal/theme"
	"github.com/nhle/mailagent/internal/ui"
	"github.com/nhle/mailagent/internal/ui/command"
	"github.com/nhle/mailagent/internal/ui/compose"
	helpview "github.com/nhle/mailagent/internal/ui/help"
	"github.com/nhle/mailagent/internal/ui/inbox"
	"github.com/nhle/mailagent/internal/ui/reader"
	"github.com/nhle/mailagent/internal/ui/settings"
	"github.com/nhle/mailagent/internal/ui/status"
)

// Backend is the part of the backend client the UI drives.
type Backend interface {
	monitor.Checker
	InitiateLogin(ctx context.Context) result.Result[backend.LoginResponse]
	ListEmails(ctx context.Context, labelID string, maxResults int) result.Result[[]backend.EmailMetadata]
	EmailDetails(ctx context.Context, id string) result.Result[backend.EmailDetails]
	ThreadMessages(ctx context.Context, threadID string) result.Result[[]string]
	Suggestions(ctx context.Context, id string) result.Result[[]string]
	ArchiveEmail(ctx context.Context, id string) result.Result[backend.ActionResponse]
	DeleteEmail(ctx context.Context, id string) result.Result[backend.ActionResponse]
	MarkRead(ctx context.Context, id string) result.Result[backend.ActionResponse]
	MarkUnread(ctx context.Context, id string) result.Result[backend.ActionResponse]
	SendEmail(ctx context.Context, d backend.Draft) result.Result[backend.ActionResponse]
	Config(ctx context.Context) result.Result[backend.ConfigData]
	SaveConfig(ctx context.Context, cfg backend.ConfigData) result.Result[bool]
	Signature(ctx context.Context) result.Result[string]
	SaveSignature(ctx context.Context, signature string) result.Result[bool]
}

var _ Backend = (*backend.Client)(nil)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewReader
	ViewCompose
	ViewSettings
	ViewHelp
	ViewCommand
)

// Deps are the collaborators of the root model. Store, Monitor and
// Credentials are optional.
type Deps struct {
	Context     context.Context
	Config      *config.AppConfig
	Backend     Backend
	Store       store.Store
	Monitor     *monitor.Monitor
	Credentials *credential.Store
	Logger      *slog.Logger

	// Synchronous runs every task inline inside Update. Tests use it.
	Synchronous bool
}

// Model is the root Bubble Tea model. It is used through a pointer so
// that task callbacks dispatched onto the UI queue can update it.
type Model struct {
	ctx     context.Context
	cfg     *config.AppConfig
	backend Backend
	store   store.Store
	monitor *monitor.Monitor
	creds   *credential.Store
	logger  *slog.Logger

	queue  *Queue
	runner *task.Runner
	status *status.Model
	keys   *keys.KeyMap
	layout ui.Layout

	currentView  ViewState
	previousView ViewState
	inbox        inbox.Model
	reader       reader.Model
	compose      compose.Model
	settings     settings.Model
	helpView     helpview.Model
	commandView  command.Model

	health     monitor.StatusMsg
	haveHealth bool
	signature  string
	ready      bool

	// pending collects commands produced by task callbacks during one
	// Update.
	pending []tea.Cmd
}

// New builds the root model. The UI queue is created first, then the
// task runner that reports through the status line, then the views.
func New(d Deps) *Model {
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	queue := NewQueue(64)
	st := status.New()
	runner := task.NewRunner(ctx, task.Config{
		Synchronous: d.Synchronous,
		Dispatcher:  queue,
		Status:      st,
		Progress:    st,
		Alerter:     st,
		Logger:      logger,
	})

	k := keys.DefaultKeyMap()
	return &Model{
		ctx:         ctx,
		cfg:         cfg,
		backend:     d.Backend,
		store:       d.Store,
		monitor:     d.Monitor,
		creds:       d.Credentials,
		logger:      logger,
		queue:       queue,
		runner:      runner,
		status:      st,
		keys:        k,
		layout:      ui.NewLayout(80, 24),
		currentView: ViewInbox,
		inbox:       inbox.New(k, cfg.Display.DefaultLabel, 80, 22),
		reader:      reader.New(k, 80, 22),
		compose:     compose.New(80, 22),
		settings:    settings.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
	}
}

// Queue returns the UI dispatch queue.
func (m *Model) Queue() *Queue { return m.queue }

// Runner returns the task runner.
func (m *Model) Runner() *task.Runner { return m.runner }

// CurrentView returns the active view.
func (m *Model) CurrentView() ViewState { return m.currentView }

// Init loads the cached list, starts the first refresh, the signature
// fetch and the health monitor.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.queue.WaitForNext(),
		m.loadCachedList(m.inbox.Label()),
	}
	if m.monitor != nil {
		cmds = append(cmds, m.monitor.Start())
	}
	m.refreshList()
	m.loadSignature()
	cmds = append(cmds, m.takePending()...)
	cmds = append(cmds, m.status.Cmd())
	return tea.Batch(cmds...)
}

// after schedules cmd to be returned from the current Update.
func (m *Model) after(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *Model) takePending() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	cmds := append([]tea.Cmd{cmd}, m.takePending()...)
	cmds = append(cmds, m.status.Cmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg.fn()
		return m.queue.WaitForNext()

	case spinner.TickMsg:
		return m.status.Update(msg)

	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.inbox.SetSize(w, h)
		m.reader.SetSize(w, h)
		m.compose.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case monitor.StatusMsg:
		m.health = msg
		m.haveHealth = true
		if m.monitor == nil {
			return nil
		}
		return m.monitor.WaitForNextResult()

	case cachedListMsg:
		if !m.inbox.Loaded() && m.inbox.Label() == msg.list.LabelID {
			m.inbox.SetEmails(msg.list.Emails, true)
		}
		return nil

	case inbox.SelectedEmailMsg:
		m.openEmail(msg.ID)
		return nil

	case reader.BackMsg:
		m.currentView = ViewInbox
		return nil

	case reader.SuggestMsg:
		m.loadSuggestions(msg.EmailID)
		return nil

	case reader.ReplyMsg:
		m.previousView = ViewReader
		m.currentView = ViewCompose
		return m.compose.StartReply(msg.Email, msg.Suggestion, m.signature)

	case compose.SendMsg:
		m.send(msg.Draft, msg.DraftID)
		return nil

	case compose.SaveDraftMsg:
		m.saveDraft(msg.Draft, msg.DraftID)
		return nil

	case compose.CancelMsg:
		m.currentView = m.previousView
		return nil

	case settings.SaveMsg:
		m.saveSettings(msg.Config, msg.APIKey)
		return nil

	case settings.CancelMsg:
		m.currentView = ViewInbox
		return nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return cmd
		}
	}

	return m.updateActiveView(msg)
}

// typing reports whether the active view owns every key press.
func (m *Model) typing() bool {
	switch m.currentView {
	case ViewCompose, ViewSettings, ViewCommand:
		return true
	case ViewInbox:
		return m.inbox.Searching()
	default:
		return false
	}
}

// handleGlobalKey processes keys that are not owned by the active view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	m.status.Dismiss()

	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}

	if m.currentView == ViewCommand && msg.String() == "esc" {
		m.currentView = m.previousView
		return nil, true
	}
	if m.typing() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return nil, true
		}
		return nil, true

	case ViewInbox:
		return m.handleInboxKey(msg)

	case ViewReader:
		return m.handleReaderKey(msg)
	}

	return nil, false
}

func (m *Model) handleInboxKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit(), true
	}
	if key.Matches(msg, m.keys.Compose) {
		return m.startCompose(), true
	}
	if key.Matches(msg, m.keys.Settings) {
		m.openSettings()
		return nil, true
	}

	// List actions wait for the running list operation.
	if m.inbox.Disabled() {
		return nil, key.Matches(msg, m.keys.Refresh, m.keys.Archive, m.keys.Delete, m.keys.ToggleRead) ||
			m.folderFor(msg) != ""
	}

	if label := m.folderFor(msg); label != "" {
		m.switchFolder(label)
		return nil, true
	}

	email, selected := m.inbox.Selected()
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.refreshList()
		return nil, true
	case key.Matches(msg, m.keys.Archive):
		if selected {
			m.archive(email.ID)
		}
		return nil, true
	case key.Matches(msg, m.keys.Delete):
		if selected {
			m.deleteEmail(email.ID)
		}
		return nil, true
	case key.Matches(msg, m.keys.ToggleRead):
		if selected {
			m.setUnread(email.ID, !email.IsUnread())
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) handleReaderKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	email, ok := m.reader.Email()
	if !ok {
		return nil, false
	}
	switch {
	case key.Matches(msg, m.keys.Archive):
		m.archive(email.ID)
		return nil, true
	case key.Matches(msg, m.keys.Delete):
		m.deleteEmail(email.ID)
		return nil, true
	case key.Matches(msg, m.keys.ToggleRead):
		m.setUnread(email.ID, !m.isUnread(email.ID))
		return nil, true
	}
	return nil, false
}

func (m *Model) folderFor(msg tea.KeyMsg) string {
	folders := backend.Folders()
	for i, b := range m.keys.Folders() {
		if i < len(folders) && key.Matches(msg, b) {
			return folders[i].ID
		}
	}
	return ""
}

func (m *Model) isUnread(id string) bool {
	for _, e := range m.inbox.Emails() {
		if e.ID == id {
			return e.IsUnread()
		}
	}
	return false
}

func (m *Model) quit() tea.Cmd {
	if m.monitor != nil {
		m.monitor.Stop()
	}
	return tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case ViewReader:
		m.reader, cmd = m.reader.Update(msg)
	case ViewCompose:
		m.compose, cmd = m.compose.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return cmd
}

// View renders the full terminal UI using the layout manager.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "mailagent | " + backend.FolderName(m.inbox.Label())
	if m.inbox.Offline() {
		title += " (offline copy)"
	}
	header := m.layout.RenderHeader(title, m.connectionStatus())

	bar := m.status.View()
	if bar == "" {
		bar = m.keyHints()
	}

	return m.layout.RenderWithFrame(header, m.renderContent(), m.layout.RenderStatusBar(bar))
}

// renderContent returns the rendered string for the current active view.
func (m *Model) renderContent() string {
	switch m.currentView {
	case ViewInbox:
		return m.inbox.View()
	case ViewReader:
		return m.reader.View()
	case ViewCompose:
		return m.compose.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// connectionStatus summarizes the last health check for the header.
func (m *Model) connectionStatus() string {
	if !m.haveHealth {
		return "connecting..."
	}

	h := m.health
	state := "online"
	switch {
	case !h.Reachable:
		state = "offline"
	case !h.Authenticated:
		state = "unauthenticated"
	}

	out := theme.ConnectionStyle(state).Render(state)
	if h.Reachable && h.AIStatus != "" {
		out += " " + theme.AIStatusStyle(h.AIStatus).Render("AI: "+h.AIStatus)
	}
	if !h.CheckedAt.IsZero() {
		out += " " + h.CheckedAt.Format(time.Kitchen)
	}
	return out
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m *Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewReader:
		return "esc back | R reply | s suggest | 1-9 reply with suggestion | a archive | d delete | u unread"
	case ViewCompose, ViewSettings:
		return "tab next field | enter submit | esc cancel"
	default:
		if m.haveHealth && m.health.Reachable && !m.health.Authenticated {
			return "Not logged in to Gmail. Press : then type 'login'."
		}
		return "q quit | ? help | c compose | a archive | d delete | u read/unread | 1-6 folders | / search"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "refresh", "sync":
		m.refreshList()
	case "folder":
		label := strings.ToUpper(c.Arg(0))
		if label == "" {
			m.status.Notify("usage: folder <label>")
			return nil
		}
		m.switchFolder(label)
	case "compose", "new":
		return m.startCompose()
	case "drafts":
		m.openLatestDraft()
	case "login":
		m.login()
	case "status":
		if m.monitor != nil {
			m.monitor.Refresh()
		}
	case "settings", "config":
		m.openSettings()
	case "token":
		m.storeToken(c.Arg(0))
	case "forget-token":
		m.storeToken("")
	case "quit", "q":
		return m.quit()
	default:
		m.status.Notify(fmt.Sprintf("unknown command %q", c.Name))
	}
	return nil
}

// Close stops background work once the program has exited. Tasks still
// running finish without touching the UI.
func (m *Model) Close() {
	if m.monitor != nil {
		m.monitor.Stop()
	}
	m.queue.Close()
	m.runner.Close()
}
