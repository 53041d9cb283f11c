package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/policies"
)

func TestStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "http://localhost:5000/", nil)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "misc/a.jpg", []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/misc/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "misc", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "misc", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, url))
}

func TestStoreRejectsEscapes(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://localhost:5000", nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Delete(ctx, "https://cdn.example.com/x.jpg"), policies.ErrForeignImageURL)
	assert.ErrorIs(t, s.Delete(ctx, "http://localhost:5000/uploads/../../etc/passwd"), policies.ErrForeignImageURL)
	_, err = s.Put(ctx, "../outside.jpg", []byte("x"), "image/jpeg")
	assert.ErrorIs(t, err, policies.ErrForeignImageURL)
}
