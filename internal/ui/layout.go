// Package ui holds layout helpers shared by the mailagent views.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailagent/internal/theme"
)

// minWidth and minHeight keep views usable in a tiny terminal.
const (
	minWidth  = 20
	minHeight = 5
)

// Layout splits the terminal into a one-line header, the active view and
// a one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout for a terminal of the given size. Sizes
// below the minimum are raised to it.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           max(width, minWidth),
		Height:          max(height, minHeight),
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the width of the active view.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between the header and the status
// bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader puts title on the left and the connection summary on the
// right, filling the row with the header background.
func (l Layout) RenderHeader(title, connection string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(connection)

	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderStatusBar renders one line of status text or key hints, cut to
// the terminal width.
func (l Layout) RenderStatusBar(text string) string {
	return theme.StatusBarStyle.
		Width(l.Width).
		MaxWidth(l.Width).
		MaxHeight(l.StatusBarHeight).
		Render(text)
}

// RenderWithFrame stacks header, content and status bar. The content is
// padded or clipped to ContentHeight so the status bar stays on the last
// row.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	body := lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}
