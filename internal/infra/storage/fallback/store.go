package fallback

import (
	"context"
	"errors"
	"log/slog"

	"gowaay/internal/app/policies"
)

// Store writes to Primary and falls back to Secondary when Primary is nil or fails.
type Store struct {
	Primary   policies.ImageStore
	Secondary policies.ImageStore
	Logger    *slog.Logger
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.Primary != nil {
		url, err := s.Primary.Put(ctx, key, data, contentType)
		if err == nil {
			return url, nil
		}
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "primary image store failed, using fallback", "key", key, "error", err)
		}
	}
	if s.Secondary == nil {
		return "", errors.New("fallback: no image store available")
	}
	return s.Secondary.Put(ctx, key, data, contentType)
}

// Delete routes the URL to whichever store issued it.
func (s *Store) Delete(ctx context.Context, publicURL string) error {
	for _, store := range []policies.ImageStore{s.Primary, s.Secondary} {
		if store == nil {
			continue
		}
		err := store.Delete(ctx, publicURL)
		if !errors.Is(err, policies.ErrForeignImageURL) {
			return err
		}
	}
	return policies.ErrForeignImageURL
}

var _ policies.ImageStore = (*Store)(nil)
