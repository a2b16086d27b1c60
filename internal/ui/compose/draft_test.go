package compose

import (
	"strings"
	"testing"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/backend"
)

func TestValidateRecipients(t *testing.T) {
	tests := []struct {
		to      string
		wantErr bool
	}{
		{"ann@example.com", false},
		{"Ann <ann@example.com>, bob@example.com", false},
		{"", true},
		{"   ", true},
		{"not-an-address", true},
	}
	for _, tt := range tests {
		err := ValidateRecipients(tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRecipients(%q) = %v, wantErr %v", tt.to, err, tt.wantErr)
		}
	}
}

func TestValidateDraftIsValidationError(t *testing.T) {
	for _, to := range []string{"nobody", "ann@", "a@b@c"} {
		err := ValidateDraft(backend.Draft{To: to, Subject: "Hi"})
		if err == nil || err.Category() != apierr.CategoryValidation {
			t.Fatalf("To %q: err = %v", to, err)
		}
		if got := err.UserFriendlyMessage(); !strings.HasPrefix(got, "Invalid data. Invalid recipient address") {
			t.Fatalf("To %q: friendly message = %q", to, got)
		}
	}

	err := ValidateDraft(backend.Draft{To: " ", Subject: "Hi"})
	if err == nil || err.Category() != apierr.CategoryValidation {
		t.Fatalf("blank recipient err = %v", err)
	}

	err = ValidateDraft(backend.Draft{To: "ann@example.com"})
	if err == nil || err.Category() != apierr.CategoryValidation {
		t.Fatalf("empty message err = %v", err)
	}

	if err := ValidateDraft(backend.Draft{To: "ann@example.com", Subject: "Hi"}); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
}

func TestReplyDraft(t *testing.T) {
	e := backend.EmailDetails{
		ID:           "m1",
		Subject:      "Dinner?",
		From:         "Ann <ann@example.com>",
		PlainContent: "Are you free?\nFriday works.",
		Metadata:     map[string]any{"date": "Fri, 10 May 2024 09:30:00 +0000"},
	}

	d := ReplyDraft(e, `"1. Sure, see you Friday."`, "Bob")

	if d.To != e.From || d.ReplyTo != "m1" {
		t.Fatalf("draft = %+v", d)
	}
	if d.Subject != "Re: Dinner?" {
		t.Fatalf("subject = %q", d.Subject)
	}
	for _, want := range []string{
		"Sure, see you Friday.",
		"\n\n-- \nBob",
		"On Fri, 10 May 2024 09:30:00 +0000, Ann <ann@example.com> wrote:",
		"> Are you free?\n> Friday works.\n",
	} {
		if !strings.Contains(d.Body, want) {
			t.Errorf("body missing %q:\n%s", want, d.Body)
		}
	}
	if !strings.HasPrefix(d.Body, "Sure, see you Friday.") {
		t.Fatalf("suggestion should lead the body: %q", d.Body)
	}
}

func TestReplySubjectIsIdempotent(t *testing.T) {
	if got := ReplySubject("RE: Dinner?"); got != "RE: Dinner?" {
		t.Fatalf("ReplySubject = %q", got)
	}
	if got := SignatureBlock("  "); got != "" {
		t.Fatalf("SignatureBlock(blank) = %q", got)
	}
}
