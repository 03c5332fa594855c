package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoStoreAttach(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	d := openTestDB(t)
	f := seed(t, d)
	photos := NewPhotoStore(d)

	require.NoError(t, photos.Attach(ctx, PhotoContainer, f.boxes[0].ID, "a.jpg"))
	require.NoError(t, photos.Attach(ctx, PhotoContainer, f.boxes[0].ID, "b.jpg"))

	c, err := f.source.Containers.GetByID(ctx, f.boxes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, c.Photos)

	assert.ErrorIs(t, photos.Attach(ctx, PhotoItem, "missing", "c.jpg"), ErrNotFound)
	assert.Error(t, photos.Attach(ctx, PhotoKind("users"), f.boxes[0].ID, "d.jpg"))
}
