package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vbonduro/stowaway/internal/domain"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

const groupColumns = `id, user_id, parent_id, name, type, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (*domain.Group, error) {
	g := &domain.Group{}
	var (
		parentID  sql.NullString
		groupType string
	)
	if err := row.Scan(&g.ID, &g.UserID, &parentID, &g.Name, &groupType, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.ParentID = stringPtr(parentID)
	g.Type = domain.GroupType(groupType)
	return g, nil
}

func (s *GroupStore) Create(ctx context.Context, userID, name string, groupType domain.GroupType, parentID *string) (*domain.Group, error) {
	id := uuid.NewString()
	ts := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_groups (id, user_id, parent_id, name, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, nullString(parentID), name, string(groupType), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	g, err := scanGroup(s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM inventory_groups WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

func (s *GroupStore) ListForUser(ctx context.Context, userID string) ([]*domain.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+groupColumns+` FROM inventory_groups
		WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer closeRows(rows)

	var groups []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}
