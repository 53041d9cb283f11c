package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/policies"
)

const (
	uploadImageKey = "uploads.image.put"
	deleteImageKey = "uploads.image.delete"

	keyPrefix = "misc/"
)

var (
	ErrNoImage          = errors.New("uploads: no image file provided")
	ErrURLRequired      = errors.New("uploads: image url is required")
	ErrProcessingFailed = errors.New("uploads: failed to process image")
)

type UploadImageCommand struct {
	OriginalName string
	Body         io.Reader
}

func (UploadImageCommand) Key() string { return uploadImageKey }

func (UploadImageCommand) ManagesOwnTransaction() bool { return true }

type UploadedImage struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int    `json:"size"`
	URL          string `json:"url"`
}

type UploadImageHandler struct {
	Processor policies.ImageProcessor
	Store     policies.ImageStore
	Logger    *slog.Logger
}

// Handle normalizes the image and stores it under misc/<uuid><ext>.
func (h *UploadImageHandler) Handle(ctx context.Context, cmd UploadImageCommand) (*UploadedImage, error) {
	if cmd.Body == nil {
		return nil, ErrNoImage
	}
	img, err := h.Processor.Process(cmd.Body)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WarnContext(ctx, "image processing failed", "name", cmd.OriginalName, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	key := keyPrefix + uuid.NewString() + img.Extension
	url, err := h.Store.Put(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "image uploaded", "key", key, "size", len(img.Data))
	}
	return &UploadedImage{
		Filename:     key,
		OriginalName: cmd.OriginalName,
		Size:         len(img.Data),
		URL:          url,
	}, nil
}

type DeleteImageCommand struct {
	URL string
}

func (DeleteImageCommand) Key() string { return deleteImageKey }

func (DeleteImageCommand) ManagesOwnTransaction() bool { return true }

type DeleteImageResult struct {
	URL string `json:"url"`
}

type DeleteImageHandler struct {
	Store policies.ImageStore
}

func (h *DeleteImageHandler) Handle(ctx context.Context, cmd DeleteImageCommand) (*DeleteImageResult, error) {
	url := strings.TrimSpace(cmd.URL)
	if url == "" {
		return nil, ErrURLRequired
	}
	if err := h.Store.Delete(ctx, url); err != nil {
		return nil, err
	}
	return &DeleteImageResult{URL: url}, nil
}

var (
	_ commands.Handler[UploadImageCommand, *UploadedImage]     = (*UploadImageHandler)(nil)
	_ commands.Handler[DeleteImageCommand, *DeleteImageResult] = (*DeleteImageHandler)(nil)
)
