package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/policies"
)

// fakeS3 answers the handful of path-style calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte // bodies may be aws-chunked over plain http
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodHead && (r.URL.Path == "/photos" || r.URL.Path == "/photos/"):
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestStorePutAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewStore(Options{
		Endpoint:       srv.URL,
		PublicEndpoint: "https://cdn.gowaay.com",
		AccessKey:      "key",
		SecretKey:      "secret",
		Bucket:         "photos",
		Region:         "us-east-1",
	})
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "misc/a.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.gowaay.com/photos/misc/a.jpg", url)
	assert.Contains(t, fake.objects, "/photos/misc/a.jpg")
	assert.Equal(t, "image/jpeg", fake.types["/photos/misc/a.jpg"])

	require.NoError(t, store.Delete(ctx, url))
	assert.NotContains(t, fake.objects, "/photos/misc/a.jpg")

	assert.ErrorIs(t, store.Delete(ctx, "https://elsewhere.com/photos/misc/a.jpg"), policies.ErrForeignImageURL)
}

func TestKeyFromURL(t *testing.T) {
	s := &Store{bucket: "photos", publicBaseURL: "http://localhost:9000"}
	key, ok := s.keyFromURL("http://localhost:9000/photos/misc/x.jpg?v=1")
	assert.True(t, ok)
	assert.Equal(t, "misc/x.jpg", key)

	_, ok = s.keyFromURL("http://localhost:9000/photos/../secret")
	assert.False(t, ok)
	_, ok = s.keyFromURL("http://localhost:9000/other/misc/x.jpg")
	assert.False(t, ok)
}

func TestNewStoreRequiresEndpointAndBucket(t *testing.T) {
	_, err := NewStore(Options{Bucket: "b"})
	assert.Error(t, err)
	_, err = NewStore(Options{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	s, err := NewStore(Options{Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b/k.jpg", s.objectURL("k.jpg"))
}
