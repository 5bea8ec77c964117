package sha256

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
)

const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestHash(t *testing.T) {
	t.Parallel()

	got, err := New().Hash([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloDigest, got)
}

func TestHashFromMatchesHash(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.HashFrom(func(w io.Writer) error {
		_, err := io.WriteString(w, "hello world")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, helloDigest, got)

	table := dataset.Table{Name: "crews", Columns: []string{"Crew Name"}, Rows: [][]string{{"Grey Fleet"}}}
	streamed, err := h.HashFrom(table.WriteCSV)
	require.NoError(t, err)
	direct, err := h.Hash([]byte("Crew Name\nGrey Fleet\n"))
	require.NoError(t, err)
	assert.Equal(t, direct, streamed)
}

func TestHashFromPropagatesWriteError(t *testing.T) {
	t.Parallel()

	_, err := New().HashFrom(func(io.Writer) error { return errors.New("boom") })
	require.ErrorContains(t, err, "boom")
}
