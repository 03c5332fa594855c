package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerStoreListByPlace(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	extra, err := f.source.Containers.Create(ctx, "u1", f.places[0].ID, "Bin", nil, nil)
	require.NoError(t, err)

	got, err := f.source.Containers.ListByPlace(ctx, f.places[0].ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, f.boxes[0].ID, got[0].ID)
	assert.Equal(t, extra.ID, got[1].ID)

	empty, err := f.source.Containers.ListByPlace(ctx, "nowhere")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestContainerStoreGetByQRCode(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	c, err := f.source.Containers.GetByQRCode(ctx, "QR-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Shelf", c.Name)
	require.NotNil(t, c.QRCodeID)
	assert.Equal(t, "QR-1", *c.QRCodeID)

	c, err = f.source.Containers.GetByQRCode(ctx, "QR-404")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestContainerStoreRejectsUnknownPlace(t *testing.T) {
	s := NewContainerStore(openTestDB(t))

	_, err := s.Create(context.Background(), "u1", "nowhere", "Box", nil, nil)
	assert.Error(t, err)
}

func TestContainerStoreTouch(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, f.boxes[0].LastAccessed)
	require.NoError(t, f.source.Containers.Touch(ctx, f.boxes[0].ID, at))

	c, err := f.source.Containers.GetByID(ctx, f.boxes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, c.LastAccessed)
	assert.True(t, at.Equal(*c.LastAccessed))

	assert.ErrorIs(t, f.source.Containers.Touch(ctx, "missing", at), ErrNotFound)
}

func TestContainerStoreDeleteRemovesItems(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))
	drill, err := f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[0].ID, Name: "Drill"})
	require.NoError(t, err)

	require.NoError(t, f.source.Containers.Delete(ctx, f.boxes[0].ID))

	c, err := f.source.Containers.GetByID(ctx, f.boxes[0].ID)
	require.NoError(t, err)
	assert.Nil(t, c)
	item, err := f.source.Items.GetByID(ctx, drill.ID)
	require.NoError(t, err)
	assert.Nil(t, item)

	assert.ErrorIs(t, f.source.Containers.Delete(ctx, f.boxes[0].ID), ErrNotFound)
}
