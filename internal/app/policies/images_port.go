package policies

import (
	"context"
	"errors"
	"io"
)

type ProcessedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

type ImageProcessor interface {
	Process(r io.Reader) (ProcessedImage, error)
}

// ImageStore persists processed images and resolves them back from their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
}

// ErrForeignImageURL is returned by a store asked to delete a URL it did not issue.
var ErrForeignImageURL = errors.New("images: url not managed by this store")
