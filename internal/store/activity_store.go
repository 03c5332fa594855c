package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/stowaway/internal/domain"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Record appends an entry and returns its id. A zero CreatedAt is stamped
// with the current time.
func (s *ActivityStore) Record(ctx context.Context, entry *domain.ActivityLog) (int64, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (user_id, action, entity_id, actor_email, actor_name, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.Action, entry.EntityID, entry.ActorEmail, entry.ActorName, entry.IPAddress, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to record activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// ListPage returns up to limit entries with id greater than afterID in id
// order. A non-zero before restricts the page to entries created earlier.
func (s *ActivityStore) ListPage(ctx context.Context, afterID int64, before time.Time, limit int) ([]*domain.ActivityLog, error) {
	query := `
		SELECT id, user_id, action, entity_id, actor_email, actor_name, ip_address, created_at
		FROM activity_log WHERE id > ?`
	args := []any{afterID}
	if !before.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer closeRows(rows)

	var entries []*domain.ActivityLog
	for rows.Next() {
		e := &domain.ActivityLog{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityID, &e.ActorEmail, &e.ActorName, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %w", err)
	}
	return entries, nil
}

// Scrub blanks the personal fields of an entry.
func (s *ActivityStore) Scrub(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE activity_log SET actor_email = '', actor_name = '', ip_address = '' WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to scrub activity: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to scrub activity %d: %w", id, err)
	}
	return nil
}
