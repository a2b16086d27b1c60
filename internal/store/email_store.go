package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mailagent/internal/backend"
)

type emailRow struct {
	LabelID   string    `db:"label_id"`
	ID        string    `db:"id"`
	Position  int       `db:"position"`
	Subject   string    `db:"subject"`
	Sender    string    `db:"sender"`
	Date      string    `db:"date"`
	LabelIDs  string    `db:"label_ids"`
	FetchedAt time.Time `db:"fetched_at"`
}

// ReplaceEmails stores emails as the current list for labelID, dropping
// whatever was cached for that label before.
func (s *SQLiteStore) ReplaceEmails(
	ctx context.Context,
	labelID string,
	emails []backend.EmailMetadata,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails WHERE label_id = ?", labelID); err != nil {
		return fmt.Errorf("clearing emails for %s: %w", labelID, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO emails (
			label_id, id, position, subject, sender, date, label_ids, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, e := range emails {
		labels, err := json.Marshal(e.LabelIDs)
		if err != nil {
			return fmt.Errorf("marshaling labels for email %s: %w", e.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			labelID, e.ID, i, e.Subject, e.From, e.Date, string(labels), now,
		)
		if err != nil {
			return fmt.Errorf("caching email %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetEmails returns the cached list for labelID, or nil when the label
// was never cached.
func (s *SQLiteStore) GetEmails(ctx context.Context, labelID string) (*CachedList, error) {
	var rows []emailRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM emails WHERE label_id = ? ORDER BY position", labelID)
	if err != nil {
		return nil, fmt.Errorf("querying emails for %s: %w", labelID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	list := &CachedList{
		LabelID:   labelID,
		Emails:    make([]backend.EmailMetadata, 0, len(rows)),
		FetchedAt: rows[0].FetchedAt,
	}
	for _, r := range rows {
		var labels []string
		if err := json.Unmarshal([]byte(r.LabelIDs), &labels); err != nil {
			return nil, fmt.Errorf("unmarshaling labels for email %s: %w", r.ID, err)
		}
		list.Emails = append(list.Emails, backend.EmailMetadata{
			ID:       r.ID,
			Subject:  r.Subject,
			From:     r.Sender,
			Date:     r.Date,
			LabelIDs: labels,
		})
	}
	return list, nil
}

// RemoveEmail drops a message from every cached list and forgets its
// suggestions.
func (s *SQLiteStore) RemoveEmail(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM emails WHERE id = ?", id); err != nil {
		return fmt.Errorf("removing email %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM suggestions WHERE email_id = ?", id); err != nil {
		return fmt.Errorf("removing suggestions for %s: %w", id, err)
	}
	return nil
}

// SaveSuggestions caches the reply suggestions for a message.
func (s *SQLiteStore) SaveSuggestions(
	ctx context.Context,
	emailID string,
	suggestions []string,
) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshaling suggestions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO suggestions (email_id, suggestions, fetched_at)
		VALUES (?, ?, ?)`,
		emailID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving suggestions for %s: %w", emailID, err)
	}
	return nil
}

// GetSuggestions returns cached suggestions, or nil when none are cached.
func (s *SQLiteStore) GetSuggestions(ctx context.Context, emailID string) ([]string, error) {
	var data string
	err := s.db.GetContext(ctx, &data,
		"SELECT suggestions FROM suggestions WHERE email_id = ?", emailID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting suggestions for %s: %w", emailID, err)
	}

	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshaling suggestions for %s: %w", emailID, err)
	}
	return out, nil
}
