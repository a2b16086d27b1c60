package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParse(t *testing.T) {
	c, ok := Parse("  Folder  SENT ")
	if !ok || c.Name != "folder" || c.Arg(0) != "SENT" || c.Arg(1) != "" {
		t.Fatalf("Parse = %+v, %v", c, ok)
	}
	if _, ok := Parse("   "); ok {
		t.Fatal("blank line should not parse")
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "token abc" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command")
	}
	c, ok := cmd().(CommandMsg)
	if !ok || c.Name != "token" || c.Arg(0) != "abc" {
		t.Fatalf("msg = %#v", cmd())
	}
	if m.input.Value() != "" {
		t.Fatal("input should reset after enter")
	}
}
