package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/photostore"
)

var _ photostore.PhotoStore = (*S3PhotoStore)(nil)

type object struct {
	body         []byte
	contentType  string
	cacheControl string
}

// fakeS3 is a tiny in-memory stand-in for the object endpoints the store uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]object
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = object{
			body:         body,
			contentType:  req.Header.Get("Content-Type"),
			cacheControl: req.Header.Get("Cache-Control"),
		}
		return respond(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, []byte(`<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`),
				http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return respond(http.StatusOK, obj.body, http.Header{"Content-Type": {obj.contentType}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return respond(http.StatusNoContent, nil, http.Header{}), nil
	}
	return respond(http.StatusNotImplemented, nil, http.Header{}), nil
}

func respond(status int, body []byte, h http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: h}
}

func newTestStore(t *testing.T) (*S3PhotoStore, *fakeS3) {
	fake := &fakeS3{objects: map[string]object{}}
	s, err := NewS3PhotoStore(context.Background(), Config{
		Bucket:          "photos",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		CacheControl:    "public, max-age=31536000",
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3PhotoStoreSaveGetDelete(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	key, err := s.Save(ctx, "items/i1", "image/webp", strings.NewReader("webp bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "items/i1/"))

	stored := fake.objects[key]
	assert.Equal(t, "image/webp", stored.contentType)
	assert.Equal(t, "public, max-age=31536000", stored.cacheControl)

	body, contentType, err := s.Get(ctx, key)
	require.NoError(t, err)
	t.Cleanup(func() { _ = body.Close() })
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "webp bytes", string(data))
	assert.Equal(t, "image/webp", contentType)

	require.NoError(t, s.Delete(ctx, key))
	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
}

func TestNewS3PhotoStoreRequiresBucket(t *testing.T) {
	_, err := NewS3PhotoStore(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingBucket)
}
