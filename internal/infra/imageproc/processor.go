package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"gowaay/internal/app/policies"
)

const (
	DefaultMaxSide  = 1920
	DefaultQuality  = 80
	DefaultMaxBytes = 10 << 20
)

var (
	ErrTooLarge    = errors.New("imageproc: image exceeds upload limit")
	ErrUnsupported = errors.New("imageproc: unsupported or corrupt image")
)

// Processor fits uploads inside a MaxSide square without enlarging them and
// re-encodes them as JPEG. EXIF orientation is applied before resizing.
type Processor struct {
	MaxSide  int
	Quality  int
	MaxBytes int64
}

func NewProcessor() Processor {
	return Processor{MaxSide: DefaultMaxSide, Quality: DefaultQuality, MaxBytes: DefaultMaxBytes}
}

func (p Processor) Process(r io.Reader) (policies.ProcessedImage, error) {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return policies.ProcessedImage{}, err
	}
	if int64(len(raw)) > limit {
		return policies.ProcessedImage{}, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return policies.ProcessedImage{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	side := p.MaxSide
	if side <= 0 {
		side = DefaultMaxSide
	}
	if b := img.Bounds(); b.Dx() > side || b.Dy() > side {
		img = imaging.Fit(img, side, side, imaging.Lanczos)
	}

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return policies.ProcessedImage{}, err
	}
	return policies.ProcessedImage{
		Data:        out.Bytes(),
		ContentType: "image/jpeg",
		Extension:   ".jpg",
	}, nil
}

var _ policies.ImageProcessor = Processor{}
