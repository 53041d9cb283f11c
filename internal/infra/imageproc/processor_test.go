package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessShrinksLargeImages(t *testing.T) {
	out, err := NewProcessor().Process(bytes.NewReader(pngOf(t, 3840, 1280)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.ContentType)
	assert.Equal(t, ".jpg", out.Extension)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 640, cfg.Height)
}

func TestProcessNeverEnlarges(t *testing.T) {
	out, err := NewProcessor().Process(bytes.NewReader(pngOf(t, 400, 300)))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := NewProcessor().Process(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestProcessRejectsOversizedUploads(t *testing.T) {
	p := Processor{MaxBytes: 16}
	_, err := p.Process(bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, ErrTooLarge)
}
