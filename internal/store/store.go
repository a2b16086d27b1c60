// Package store is the local SQLite cache: the last email list fetched
// per label, reply suggestions per message, and unsent drafts.
package store

import (
	"context"
	"time"

	"github.com/nhle/mailagent/internal/backend"
)

// Draft is a locally saved outgoing message.
type Draft struct {
	ID        string
	Draft     backend.Draft
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CachedList is an email list with the time it was fetched.
type CachedList struct {
	LabelID   string
	Emails    []backend.EmailMetadata
	FetchedAt time.Time
}

// Store defines the persistence interface for the offline cache.
type Store interface {
	// === Email lists ===

	ReplaceEmails(ctx context.Context, labelID string, emails []backend.EmailMetadata) error
	GetEmails(ctx context.Context, labelID string) (*CachedList, error)
	RemoveEmail(ctx context.Context, id string) error

	// === Suggestions ===

	SaveSuggestions(ctx context.Context, emailID string, suggestions []string) error
	GetSuggestions(ctx context.Context, emailID string) ([]string, error)

	// === Drafts ===

	SaveDraft(ctx context.Context, d Draft) (Draft, error)
	GetDrafts(ctx context.Context) ([]Draft, error)
	DeleteDraft(ctx context.Context, id string) error

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
