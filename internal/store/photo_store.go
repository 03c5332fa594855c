package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PhotoKind names the entity table a photo is attached to.
type PhotoKind string

const (
	PhotoPlace     PhotoKind = "places"
	PhotoContainer PhotoKind = "containers"
	PhotoItem      PhotoKind = "items"
)

// PhotoStore records which blob keys belong to which entity. The blobs
// themselves live in a photostore.PhotoStore.
type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (k PhotoKind) valid() bool {
	return k == PhotoPlace || k == PhotoContainer || k == PhotoItem
}

// Attach appends key to the photo list of the given entity.
func (s *PhotoStore) Attach(ctx context.Context, kind PhotoKind, entityID, key string) error {
	if !kind.valid() {
		return fmt.Errorf("unknown photo kind %q", kind)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT photos FROM `+string(kind)+` WHERE id = ?`, entityID).Scan(&raw)
	if err == sql.ErrNoRows {
		return fmt.Errorf("failed to attach photo to %s %s: %w", kind, entityID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read photos: %w", err)
	}

	photos := append(decodeList(raw), key)
	if _, err := tx.ExecContext(ctx, `UPDATE `+string(kind)+` SET photos = ?, updated_at = ? WHERE id = ?`,
		encodeList(photos), now(), entityID); err != nil {
		return fmt.Errorf("failed to attach photo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit photo: %w", err)
	}
	return nil
}
