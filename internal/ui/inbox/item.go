package inbox

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/theme"
)

// EmailItem wraps backend.EmailMetadata so it can be used in a bubbles/list.
type EmailItem struct {
	Email backend.EmailMetadata
}

// FilterValue returns the string used for filtering.
func (i EmailItem) FilterValue() string {
	return i.Email.Subject + " " + i.Email.From
}

// Title returns the subject, or a placeholder for empty subjects.
func (i EmailItem) Title() string {
	if i.Email.Subject == "" {
		return "(no subject)"
	}
	return i.Email.Subject
}

// Description returns the sender and date.
func (i EmailItem) Description() string {
	return senderName(i.Email.From) + " | " + displayDate(i.Email.Date, time.Now())
}

// ItemDelegate implements list.ItemDelegate for rendering inbox rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single inbox row: unread marker, sender, subject, date.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(EmailItem)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	marker := " "
	textStyle := theme.ReadStyle
	if it.Email.IsUnread() {
		marker = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
		textStyle = theme.UnreadStyle
	}

	sender := truncate(senderName(it.Email.From), 24)
	dateStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(displayDate(it.Email.Date, time.Now()))

	line := fmt.Sprintf(
		"%s %s  %s  %s",
		marker,
		textStyle.Render(fmt.Sprintf("%-24s", sender)),
		textStyle.Render(it.Title()),
		dateStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// senderName returns the display name of a From header, falling back to
// the address and then the raw value.
func senderName(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// displayDate shows the time for messages from today and a short date
// otherwise. Unparseable dates are shown as received.
func displayDate(raw string, now time.Time) string {
	if raw == "" {
		return ""
	}
	h := mail.HeaderFromMap(map[string][]string{"Date": {raw}})
	t, err := h.Date()
	if err != nil || t.IsZero() {
		return raw
	}
	t = t.In(now.Location())
	if y, m, d := t.Date(); y == now.Year() && m == now.Month() && d == now.Day() {
		return t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 02")
	}
	return t.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
