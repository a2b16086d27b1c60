package reader

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/keys"
)

func TestPlainBody(t *testing.T) {
	tests := []struct {
		name  string
		email backend.EmailDetails
		want  string
	}{
		{"plain wins", backend.EmailDetails{PlainContent: " hi ", HTMLContent: "<b>x</b>"}, "hi"},
		{"html content", backend.EmailDetails{HTMLContent: "<p>Hello</p><p>World &amp; co</p>"}, "Hello\nWorld & co"},
		{"html body", backend.EmailDetails{Body: "a<br/>b", IsHTML: true}, "a\nb"},
		{"raw body", backend.EmailDetails{Body: "<not html>"}, "<not html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainBody(tt.email); got != tt.want {
				t.Fatalf("PlainBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripHTMLDropsStyles(t *testing.T) {
	got := StripHTML("<html><head><style>p{color:red}</style></head><body><div>Hi</div></body></html>")
	if got != "Hi" {
		t.Fatalf("StripHTML() = %q", got)
	}
}

func TestCleanSuggestion(t *testing.T) {
	tests := map[string]string{
		`"Thanks, see you then."`:                        "Thanks, see you then.",
		"1. Sounds good!":                                "Sounds good!",
		"Option 2: I'll **definitely** be there.":        "I'll definitely be there.",
		"Here are three reply suggestions: Sure thing.":  "Sure thing.",
		"- Works for me":                                 "Works for me",
		"Line one\n\n\n\nLine two":                       "Line one\n\nLine two",
	}
	for in, want := range tests {
		if got := CleanSuggestion(in); got != want {
			t.Errorf("CleanSuggestion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSuggestionKeys(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetEmail(backend.EmailDetails{ID: "m1", Subject: "Dinner?"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("expected suggest command")
	}
	if msg, ok := cmd().(SuggestMsg); !ok || msg.EmailID != "m1" {
		t.Fatalf("msg = %#v", cmd())
	}

	m.SetSuggestions("other", []string{"ignored"})
	if len(m.Suggestions()) != 0 {
		t.Fatal("suggestions for another message must be ignored")
	}

	m.SetSuggestions("m1", []string{"Yes!", "No, sorry."})
	if !strings.Contains(m.renderContent(), "Suggested replies (2)") {
		t.Fatal("suggestions panel missing")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if cmd == nil {
		t.Fatal("expected reply command")
	}
	reply, ok := cmd().(ReplyMsg)
	if !ok || reply.Suggestion != "No, sorry." || reply.Email.ID != "m1" {
		t.Fatalf("reply = %#v", reply)
	}

	if _, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")}); cmd != nil {
		t.Fatal("no third suggestion")
	}

	m.SetDisabled(true)
	if _, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}); cmd != nil {
		t.Fatal("disabled reader should not request suggestions")
	}
}

func TestThreadCountShown(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetEmail(backend.EmailDetails{ID: "m1", From: "ann@example.com"})
	m.SetThreadCount(3)
	if !strings.Contains(m.renderContent(), "3 messages in this thread") {
		t.Fatal("thread count missing")
	}
}
