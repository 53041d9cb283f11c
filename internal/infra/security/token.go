package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const minTokenBytes = 16

// RandomTokenGenerator issues opaque URL-safe bearer tokens. Size below 16
// bytes falls back to 32.
type RandomTokenGenerator struct {
	Size   int
	Prefix string
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Size
	if n < minTokenBytes {
		n = 2 * minTokenBytes
	}
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("security: read random token: %w", err)
	}
	return g.Prefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
