// Package photostore stores photo blobs for places, containers and items.
package photostore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a storage key does not name a stored photo.
var ErrNotFound = errors.New("photo not found")

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey returns a fresh storage key of the form prefix/<uuid><ext>.
func NewKey(prefix, mimeType string) string {
	name := uuid.NewString() + ExtForMimeType(mimeType)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func ExtForMimeType(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// MimeTypeForKey infers a content type from the key's extension.
func MimeTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
