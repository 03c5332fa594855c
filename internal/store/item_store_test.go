package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemStoreCreateFillsPlace(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	item, err := f.source.Items.Create(ctx, NewItem{
		UserID:      "u1",
		ContainerID: f.boxes[0].ID,
		Name:        "Drill",
		Description: "cordless",
		Tags:        []string{"tools", "power"},
	})
	require.NoError(t, err)

	require.NotNil(t, item.PlaceID)
	assert.Equal(t, f.places[0].ID, *item.PlaceID)
	assert.Equal(t, "cordless", item.Description)
	assert.Equal(t, []string{"tools", "power"}, item.Tags)
	assert.Nil(t, item.Photos)
}

func TestItemStoreCreateUnknownContainer(t *testing.T) {
	s := NewItemStore(openTestDB(t))

	_, err := s.Create(context.Background(), NewItem{UserID: "u1", ContainerID: "missing", Name: "Drill"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemStoreListByContainer(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	first, err := f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[0].ID, Name: "Drill"})
	require.NoError(t, err)
	second, err := f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[0].ID, Name: "Saw"})
	require.NoError(t, err)
	_, err = f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[1].ID, Name: "Whisk"})
	require.NoError(t, err)

	items, err := f.source.Items.ListByContainer(ctx, f.boxes[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestItemStoreMissingPlaceAndBackfill(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	d := openTestDB(t)
	f := seed(t, d)

	_, err := d.Exec(`INSERT INTO items (id, user_id, container_id, name, created_at, updated_at)
		VALUES ('legacy-1', 'u1', ?, 'Hammer', ?, ?)`, f.boxes[0].ID, now(), now())
	require.NoError(t, err)

	missing, err := f.source.Items.ListMissingPlace(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Nil(t, missing[0].PlaceID)

	require.NoError(t, f.source.Items.SetPlaceID(ctx, "legacy-1", f.places[0].ID))

	missing, err = f.source.Items.ListMissingPlace(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.ErrorIs(t, f.source.Items.SetPlaceID(ctx, "nope", "p"), ErrNotFound)
}

func TestItemStoreDelete(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	item, err := f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[0].ID, Name: "Drill"})
	require.NoError(t, err)

	require.NoError(t, f.source.Items.Delete(ctx, item.ID))

	got, err := f.source.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, f.source.Items.Delete(ctx, item.ID), ErrNotFound)
}
