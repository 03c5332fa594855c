package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/photostore"
)

var _ photostore.PhotoStore = (*LocalPhotoStore)(nil)

func TestLocalPhotoStoreSaveAndGet(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	imageData := []byte("fake png data")

	key, err := store.Save(ctx, "containers/c1", "image/png", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "containers/c1/"))

	reader, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })
	assert.Equal(t, "image/png", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "items", "image/jpeg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), photostore.ErrNotFound)
}

func TestLocalPhotoStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, photostore.ErrNotFound)

	_, err = store.Save(ctx, "../outside", "image/jpeg", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}
