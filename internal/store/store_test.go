package store_test

import (
	"context"
	"testing"

	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/store"
	"github.com/nhle/mailagent/internal/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("schema version = %d, want 2", v)
	}
}

func TestReplaceAndGetEmails(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if list, err := s.GetEmails(ctx, backend.LabelInbox); err != nil || list != nil {
		t.Fatalf("empty cache = %v, %v", list, err)
	}

	first := []backend.EmailMetadata{
		{ID: "b", Subject: "Second", From: "x@example.com", LabelIDs: []string{"INBOX", "UNREAD"}},
		{ID: "a", Subject: "First", From: "y@example.com", LabelIDs: []string{"INBOX"}},
	}
	if err := s.ReplaceEmails(ctx, backend.LabelInbox, first); err != nil {
		t.Fatalf("ReplaceEmails: %v", err)
	}
	if err := s.ReplaceEmails(ctx, backend.LabelSent, []backend.EmailMetadata{{ID: "s"}}); err != nil {
		t.Fatalf("ReplaceEmails: %v", err)
	}

	list, err := s.GetEmails(ctx, backend.LabelInbox)
	if err != nil {
		t.Fatalf("GetEmails: %v", err)
	}
	if len(list.Emails) != 2 || list.Emails[0].ID != "b" || list.Emails[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", list.Emails)
	}
	if !list.Emails[0].IsUnread() || list.Emails[0].From != "x@example.com" {
		t.Fatalf("fields lost: %+v", list.Emails[0])
	}
	if list.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not set")
	}

	if err := s.ReplaceEmails(ctx, backend.LabelInbox, first[1:]); err != nil {
		t.Fatalf("ReplaceEmails: %v", err)
	}
	list, _ = s.GetEmails(ctx, backend.LabelInbox)
	if len(list.Emails) != 1 || list.Emails[0].ID != "a" {
		t.Fatalf("replace kept stale rows: %+v", list.Emails)
	}

	sent, _ := s.GetEmails(ctx, backend.LabelSent)
	if sent == nil || len(sent.Emails) != 1 {
		t.Fatal("other label affected by replace")
	}
}

func TestRemoveEmailDropsSuggestions(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	s.ReplaceEmails(ctx, backend.LabelInbox, []backend.EmailMetadata{{ID: "m1"}, {ID: "m2"}})
	s.ReplaceEmails(ctx, backend.LabelStarred, []backend.EmailMetadata{{ID: "m1"}})
	if err := s.SaveSuggestions(ctx, "m1", []string{"Thanks!", "Will do."}); err != nil {
		t.Fatalf("SaveSuggestions: %v", err)
	}

	got, err := s.GetSuggestions(ctx, "m1")
	if err != nil || len(got) != 2 || got[1] != "Will do." {
		t.Fatalf("GetSuggestions = %v, %v", got, err)
	}

	if err := s.RemoveEmail(ctx, "m1"); err != nil {
		t.Fatalf("RemoveEmail: %v", err)
	}
	inbox, _ := s.GetEmails(ctx, backend.LabelInbox)
	if len(inbox.Emails) != 1 || inbox.Emails[0].ID != "m2" {
		t.Fatalf("inbox = %+v", inbox.Emails)
	}
	if starred, _ := s.GetEmails(ctx, backend.LabelStarred); starred != nil {
		t.Fatalf("starred = %+v", starred)
	}
	if got, _ := s.GetSuggestions(ctx, "m1"); got != nil {
		t.Fatalf("suggestions survived removal: %v", got)
	}
}

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	d, err := s.SaveDraft(ctx, store.Draft{Draft: backend.Draft{To: "a@example.com", Subject: "Hi"}})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if d.ID == "" || d.CreatedAt.IsZero() {
		t.Fatalf("draft = %+v", d)
	}

	d.Draft.Body = "Hello there"
	if _, err := s.SaveDraft(ctx, d); err != nil {
		t.Fatalf("SaveDraft update: %v", err)
	}

	drafts, err := s.GetDrafts(ctx)
	if err != nil {
		t.Fatalf("GetDrafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Draft.Body != "Hello there" || drafts[0].ID != d.ID {
		t.Fatalf("drafts = %+v", drafts)
	}

	if err := s.DeleteDraft(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if drafts, _ := s.GetDrafts(ctx); len(drafts) != 0 {
		t.Fatalf("drafts after delete = %+v", drafts)
	}
}
