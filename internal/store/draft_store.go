package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailagent/internal/backend"
)

type draftRow struct {
	ID        string    `db:"id"`
	Recipient string    `db:"recipient"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	ReplyTo   string    `db:"reply_to"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r draftRow) toDraft() Draft {
	return Draft{
		ID: r.ID,
		Draft: backend.Draft{
			To:      r.Recipient,
			Subject: r.Subject,
			Body:    r.Body,
			ReplyTo: r.ReplyTo,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// SaveDraft inserts or updates a draft. Generates a UUID if ID is empty.
func (s *SQLiteStore) SaveDraft(ctx context.Context, d Draft) (Draft, error) {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, recipient, subject, body, reply_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recipient = excluded.recipient,
			subject = excluded.subject,
			body = excluded.body,
			reply_to = excluded.reply_to,
			updated_at = excluded.updated_at`,
		d.ID, d.Draft.To, d.Draft.Subject, d.Draft.Body, d.Draft.ReplyTo,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return Draft{}, fmt.Errorf("saving draft: %w", err)
	}
	return d, nil
}

// GetDrafts returns all drafts, most recently updated first.
func (s *SQLiteStore) GetDrafts(ctx context.Context) ([]Draft, error) {
	var rows []draftRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM drafts ORDER BY updated_at DESC"); err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}

	drafts := make([]Draft, 0, len(rows))
	for _, r := range rows {
		drafts = append(drafts, r.toDraft())
	}
	return drafts, nil
}

// DeleteDraft removes a draft by ID.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}
