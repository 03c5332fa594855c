package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/db"
	"github.com/vbonduro/stowaway/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// steppedClock makes each created row one second newer than the last.
func steppedClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	t.Cleanup(func() { now = orig })
}

func strPtr(s string) *string { return &s }

type fixture struct {
	source *Source
	places []*domain.Place
	boxes  []*domain.Container
}

func seed(t *testing.T, d *sql.DB) fixture {
	ctx := context.Background()
	src := NewSource(d)

	garage, err := src.Places.Create(ctx, "u1", "Garage", domain.PlaceStorage, nil)
	require.NoError(t, err)
	kitchen, err := src.Places.Create(ctx, "u1", "Kitchen", domain.PlaceHome, nil)
	require.NoError(t, err)

	shelf, err := src.Containers.Create(ctx, "u1", garage.ID, "Shelf", strPtr("QR-1"), nil)
	require.NoError(t, err)
	drawer, err := src.Containers.Create(ctx, "u1", kitchen.ID, "Drawer", nil, nil)
	require.NoError(t, err)

	return fixture{source: src, places: []*domain.Place{garage, kitchen}, boxes: []*domain.Container{shelf, drawer}}
}
