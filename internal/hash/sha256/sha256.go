// Package sha256 computes the per-table checksums listed in a run manifest,
// letting consumers tell which tables changed between runs.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Hasher implements crawler.Hasher with hex-encoded SHA-256 digests.
type Hasher struct{}

// New returns a table hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash digests an already rendered table.
func (h *Hasher) Hash(rendered []byte) (string, error) {
	sum := sha256.Sum256(rendered)
	return hex.EncodeToString(sum[:]), nil
}

// HashFrom digests a table while it renders, e.g. HashFrom(table.WriteCSV),
// so the CSV is never buffered.
func (h *Hasher) HashFrom(render func(io.Writer) error) (string, error) {
	d := sha256.New()
	if err := render(d); err != nil {
		return "", fmt.Errorf("digest table: %w", err)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}
