package photostore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	k := NewKey("items/i1", "image/png")
	assert.True(t, strings.HasPrefix(k, "items/i1/"))
	assert.True(t, strings.HasSuffix(k, ".png"))
	assert.NotEqual(t, k, NewKey("items/i1", "image/png"))

	assert.False(t, strings.Contains(NewKey("", "image/jpeg"), "/"))
}

func TestMimeTypeRoundTrip(t *testing.T) {
	for _, mt := range []string{"image/png", "image/gif", "image/webp", "image/jpeg"} {
		assert.Equal(t, mt, MimeTypeForKey("x"+ExtForMimeType(mt)))
	}
}
