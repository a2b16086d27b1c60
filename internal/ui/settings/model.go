// Package settings is the form for the backend's AI and account settings.
package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/theme"
)

// SaveMsg carries the edited settings. APIKey is empty when the stored
// key should be left alone.
type SaveMsg struct {
	Config backend.ConfigData
	APIKey string
}

// CancelMsg signals the settings view should close without saving.
type CancelMsg struct{}

type formBindings struct {
	ollamaURL string
	modelName string
	maxEmails string
	signature string
	apiKey    string
}

// Model is the settings form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	disabled bool
	width    int
	height   int
}

// New creates an idle settings form.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start opens the form filled with cfg.
func (m *Model) Start(cfg backend.ConfigData) tea.Cmd {
	m.fb.ollamaURL = cfg.Ollama.APIBaseURL
	m.fb.modelName = cfg.Ollama.ModelName
	m.fb.maxEmails = ""
	if cfg.App.MaxEmailsFetch > 0 {
		m.fb.maxEmails = strconv.Itoa(cfg.App.MaxEmailsFetch)
	}
	m.fb.signature = cfg.User.Signature
	m.fb.apiKey = ""
	m.disabled = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether the form has been opened.
func (m Model) Active() bool { return m.form != nil }

// SetDisabled ignores input while settings are being saved.
func (m *Model) SetDisabled(disabled bool) { m.disabled = disabled }

// Config returns the settings as currently entered.
func (m Model) Config() backend.ConfigData {
	var cfg backend.ConfigData
	cfg.Ollama.APIBaseURL = strings.TrimSpace(m.fb.ollamaURL)
	cfg.Ollama.ModelName = strings.TrimSpace(m.fb.modelName)
	cfg.App.MaxEmailsFetch, _ = strconv.Atoi(strings.TrimSpace(m.fb.maxEmails))
	cfg.User.Signature = strings.TrimSpace(m.fb.signature)
	return cfg
}

// Update handles messages for the settings form.
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
		cfg := m.Config()
		key := strings.TrimSpace(m.fb.apiKey)
		return m, func() tea.Msg { return SaveMsg{Config: cfg, APIKey: key} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading settings...")
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Settings"
	if m.disabled {
		title += " (saving...)"
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(title) + "\n" + m.form.View())
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
				Title("Ollama URL").
				Description("Base URL of the local model server").
				Placeholder("http://localhost:11434").
				Value(&m.fb.ollamaURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Model").
				Placeholder("llama3").
				Value(&m.fb.modelName).
				Validate(validateRequired("Model")),
			huh.NewInput().
				Title("Max emails").
				Description("Messages fetched per folder").
				Placeholder("50").
				Value(&m.fb.maxEmails).
				Validate(validatePositive),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Signature").
				Lines(4).
				Value(&m.fb.signature),
			huh.NewInput().
				Title("Backend API key").
				Description("Stored in the system keyring; leave empty to keep the current key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.apiKey),
		),
	).WithWidth(m.formWidth())
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:11434)")
	}
	return nil
}

func validatePositive(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}
