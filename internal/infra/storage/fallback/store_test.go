package fallback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/policies"
)

type fakeStore struct {
	prefix  string
	putErr  error
	deleted []string
}

func (f *fakeStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	return f.prefix + key, nil
}

func (f *fakeStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, f.prefix) {
		return policies.ErrForeignImageURL
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func TestPutFallsBack(t *testing.T) {
	ctx := context.Background()
	s3 := &fakeStore{prefix: "https://s3/", putErr: errors.New("connection refused")}
	disk := &fakeStore{prefix: "http://api/uploads/"}
	s := &Store{Primary: s3, Secondary: disk}

	url, err := s.Put(ctx, "misc/a.jpg", nil, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://api/uploads/misc/a.jpg", url)

	s3.putErr = nil
	url, err = s.Put(ctx, "misc/b.jpg", nil, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/misc/b.jpg", url)

	noPrimary := &Store{Secondary: disk}
	url, err = noPrimary.Put(ctx, "misc/c.jpg", nil, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://api/uploads/misc/c.jpg", url)
}

func TestDeleteRoutesByURL(t *testing.T) {
	ctx := context.Background()
	s3 := &fakeStore{prefix: "https://s3/"}
	disk := &fakeStore{prefix: "http://api/uploads/"}
	s := &Store{Primary: s3, Secondary: disk}

	require.NoError(t, s.Delete(ctx, "http://api/uploads/misc/a.jpg"))
	require.NoError(t, s.Delete(ctx, "https://s3/misc/b.jpg"))
	assert.Equal(t, []string{"http://api/uploads/misc/a.jpg"}, disk.deleted)
	assert.Equal(t, []string{"https://s3/misc/b.jpg"}, s3.deleted)

	assert.ErrorIs(t, s.Delete(ctx, "https://other/x.jpg"), policies.ErrForeignImageURL)
}
