package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vbonduro/stowaway/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// NewItem holds the caller-supplied fields of an item to create.
type NewItem struct {
	UserID      string
	ContainerID string
	Name        string
	Description string
	Tags        []string
	VoiceNote   *string
	GroupID     *string
}

const itemColumns = `id, user_id, container_id, place_id, name, description, photos, voice_note, tags, group_id, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	i := &domain.Item{}
	var (
		placeID   sql.NullString
		photos    string
		voiceNote sql.NullString
		tags      string
		groupID   sql.NullString
	)
	err := row.Scan(&i.ID, &i.UserID, &i.ContainerID, &placeID, &i.Name, &i.Description, &photos, &voiceNote, &tags, &groupID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.PlaceID = stringPtr(placeID)
	i.Photos = decodeList(photos)
	i.VoiceNote = stringPtr(voiceNote)
	i.Tags = decodeList(tags)
	i.GroupID = stringPtr(groupID)
	return i, nil
}

// Create inserts an item. Its place id is copied from the container, so the
// container must exist.
func (s *ItemStore) Create(ctx context.Context, in NewItem) (*domain.Item, error) {
	var placeID string
	err := s.db.QueryRowContext(ctx, `SELECT place_id FROM containers WHERE id = ?`, in.ContainerID).Scan(&placeID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("failed to create item: container %s: %w", in.ContainerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item container: %w", err)
	}

	id := uuid.NewString()
	ts := now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, user_id, container_id, place_id, name, description, voice_note, tags, group_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.UserID, in.ContainerID, placeID, in.Name, in.Description, nullString(in.VoiceNote), encodeList(in.Tags), nullString(in.GroupID), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	i, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return i, nil
}

func (s *ItemStore) ListByContainer(ctx context.Context, containerID string) ([]*domain.Item, error) {
	return s.list(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE container_id = ? ORDER BY created_at ASC, id ASC
	`, containerID)
}

// ListMissingPlace returns up to limit items without a place id whose id
// sorts after afterID.
func (s *ItemStore) ListMissingPlace(ctx context.Context, afterID string, limit int) ([]*domain.Item, error) {
	return s.list(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE (place_id IS NULL OR place_id = '') AND id > ?
		ORDER BY id ASC LIMIT ?
	`, afterID, limit)
}

func (s *ItemStore) list(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer closeRows(rows)

	var items []*domain.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) SetPlaceID(ctx context.Context, id, placeID string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE items SET place_id = ?, updated_at = ? WHERE id = ?`, placeID, now(), id)
	if err != nil {
		return fmt.Errorf("failed to set item place: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to set place of item %s: %w", id, err)
	}
	return nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}
