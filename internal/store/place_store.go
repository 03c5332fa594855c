package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/stowaway/internal/domain"
)

type PlaceStore struct {
	db *sql.DB
}

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return &PlaceStore{db: db}
}

const placeColumns = `p.id, p.user_id, p.name, p.type, p.photos, p.group_id, p.created_at, p.updated_at`

func scanPlace(row interface{ Scan(...any) error }) (*domain.Place, error) {
	p := &domain.Place{}
	var (
		placeType string
		photos    string
		groupID   sql.NullString
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &placeType, &photos, &groupID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = domain.ParsePlaceType(placeType)
	p.Photos = decodeList(photos)
	p.GroupID = stringPtr(groupID)
	return p, nil
}

func (s *PlaceStore) Create(ctx context.Context, userID, name string, placeType domain.PlaceType, groupID *string) (*domain.Place, error) {
	id := uuid.NewString()
	ts := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO places (id, user_id, name, type, group_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, name, string(domain.ParsePlaceType(string(placeType))), nullString(groupID), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PlaceStore) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	p, err := scanPlace(s.db.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places p WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return p, nil
}

// ListForUser returns the places userID owns or is a member of, oldest
// first. Places with members carry their sharing metadata.
func (s *PlaceStore) ListForUser(ctx context.Context, userID string) ([]*domain.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+` FROM places p
		WHERE p.user_id = ?
		   OR p.id IN (SELECT place_id FROM place_members WHERE user_id = ?)
		ORDER BY p.created_at ASC, p.id ASC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer closeRows(rows)

	var places []*domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close place rows: %w", err)
	}

	if err := s.attachSharing(ctx, places); err != nil {
		return nil, err
	}
	return places, nil
}

func (s *PlaceStore) attachSharing(ctx context.Context, places []*domain.Place) error {
	if len(places) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Place, len(places))
	args := make([]any, 0, len(places))
	for _, p := range places {
		byID[p.ID] = p
		args = append(args, p.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(places)), ",")

	rows, err := s.db.QueryContext(ctx, `
		SELECT place_id, user_id, role FROM place_members
		WHERE place_id IN (`+placeholders+`)
		ORDER BY place_id, user_id
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to list place members: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var placeID, memberID, role string
		if err := rows.Scan(&placeID, &memberID, &role); err != nil {
			return fmt.Errorf("failed to scan place member: %w", err)
		}
		p := byID[placeID]
		if p.Sharing == nil {
			p.Sharing = &domain.Sharing{
				OwnerID: p.UserID,
				Roles:   map[string]domain.Role{p.UserID: domain.RoleOwner},
			}
		}
		p.Sharing.MemberIDs = append(p.Sharing.MemberIDs, memberID)
		p.Sharing.Roles[memberID] = domain.Role(role)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating place members: %w", err)
	}
	return nil
}

// AddMember shares a place with userID, replacing any previous role.
func (s *PlaceStore) AddMember(ctx context.Context, placeID, userID string, role domain.Role) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO place_members (place_id, user_id, role) VALUES (?, ?, ?)
		ON CONFLICT (place_id, user_id) DO UPDATE SET role = excluded.role
	`, placeID, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to add place member: %w", err)
	}
	return nil
}

// Delete removes a place with its containers, members and the items stored
// in it.
func (s *PlaceStore) Delete(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM items
			WHERE place_id = ?
			   OR container_id IN (SELECT id FROM containers WHERE place_id = ?)
		`, id, id)
		if err != nil {
			return fmt.Errorf("failed to delete place items: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete place: %w", err)
		}
		if err := checkAffected(result); err != nil {
			return fmt.Errorf("failed to delete place %s: %w", id, err)
		}
		return nil
	})
}
