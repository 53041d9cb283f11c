package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gowaay/internal/app/policies"
)

// Store writes images under Dir and serves them from BaseURL + "/uploads/".
type Store struct {
	Dir     string
	BaseURL string
	Logger  *slog.Logger
}

func NewStore(dir, baseURL string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: create upload dir: %w", err)
	}
	return &Store{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("local: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("local: write file: %w", err)
	}
	url := s.urlPrefix() + strings.Trim(key, "/")
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "image stored on disk", "path", path, "url", url)
	}
	return url, nil
}

// Delete removes the file behind a URL issued by Put. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, publicURL string) error {
	key, ok := strings.CutPrefix(strings.TrimSpace(publicURL), s.urlPrefix())
	if !ok {
		return policies.ErrForeignImageURL
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local: remove file: %w", err)
	}
	return nil
}

func (s *Store) urlPrefix() string {
	return s.BaseURL + "/uploads/"
}

// pathFor maps an object key into Dir, refusing keys that escape it.
func (s *Store) pathFor(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("local: object key is required")
	}
	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", policies.ErrForeignImageURL
	}
	return path, nil
}

var _ policies.ImageStore = (*Store)(nil)
