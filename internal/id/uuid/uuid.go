// Package uuid issues the run IDs recorded in manifests and log lines.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator issues UUIDv7 run IDs. Their time prefix makes published
// manifests sort in run order.
type Generator struct{}

// New returns a run ID generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns the ID for a new run.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	return id.String(), nil
}
