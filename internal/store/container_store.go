package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/stowaway/internal/domain"
)

type ContainerStore struct {
	db *sql.DB
}

func NewContainerStore(db *sql.DB) *ContainerStore {
	return &ContainerStore{db: db}
}

const containerColumns = `id, user_id, place_id, name, photos, qr_code_id, group_id, last_accessed, created_at, updated_at`

func scanContainer(row interface{ Scan(...any) error }) (*domain.Container, error) {
	c := &domain.Container{}
	var (
		photos       string
		qrCodeID     sql.NullString
		groupID      sql.NullString
		lastAccessed sql.NullTime
	)
	err := row.Scan(&c.ID, &c.UserID, &c.PlaceID, &c.Name, &photos, &qrCodeID, &groupID, &lastAccessed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Photos = decodeList(photos)
	c.QRCodeID = stringPtr(qrCodeID)
	c.GroupID = stringPtr(groupID)
	if lastAccessed.Valid {
		t := lastAccessed.Time
		c.LastAccessed = &t
	}
	return c, nil
}

func (s *ContainerStore) Create(ctx context.Context, userID, placeID, name string, qrCodeID, groupID *string) (*domain.Container, error) {
	id := uuid.NewString()
	ts := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO containers (id, user_id, place_id, name, qr_code_id, group_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, placeID, name, nullString(qrCodeID), nullString(groupID), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ContainerStore) GetByID(ctx context.Context, id string) (*domain.Container, error) {
	c, err := scanContainer(s.db.QueryRowContext(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return c, nil
}

func (s *ContainerStore) GetByQRCode(ctx context.Context, code string) (*domain.Container, error) {
	c, err := scanContainer(s.db.QueryRowContext(ctx, `SELECT `+containerColumns+` FROM containers WHERE qr_code_id = ?`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container by qr code: %w", err)
	}
	return c, nil
}

func (s *ContainerStore) ListByPlace(ctx context.Context, placeID string) ([]*domain.Container, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+containerColumns+` FROM containers
		WHERE place_id = ? ORDER BY created_at ASC, id ASC
	`, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	defer closeRows(rows)

	var containers []*domain.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating containers: %w", err)
	}
	return containers, nil
}

// Touch records that a container was opened at the given time.
func (s *ContainerStore) Touch(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE containers SET last_accessed = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch container: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to touch container %s: %w", id, err)
	}
	return nil
}

// Delete removes a container and the items stored in it.
func (s *ContainerStore) Delete(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE container_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete container items: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM containers WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete container: %w", err)
		}
		if err := checkAffected(result); err != nil {
			return fmt.Errorf("failed to delete container %s: %w", id, err)
		}
		return nil
	})
}
