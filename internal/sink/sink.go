// Package sink delivers a run's output tables to their destinations.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
)

// CSVContentType is the content type of every table object.
const CSVContentType = "text/csv; charset=utf-8"

// Sink writes a complete set of tables.
type Sink interface {
	Write(ctx context.Context, tables []dataset.Table) error
}

// Blob renders each table as <name>.csv through a BlobStore.
type Blob struct {
	store  crawler.BlobStore
	prefix string
	logger *zap.Logger
}

// NewBlob returns a Blob sink. Object paths are "<prefix>/<name>.csv", or
// "<name>.csv" when prefix is empty.
func NewBlob(store crawler.BlobStore, prefix string, logger *zap.Logger) *Blob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Blob{store: store, prefix: prefix, logger: logger}
}

// Write stores every table, stopping at the first failure.
func (b *Blob) Write(ctx context.Context, tables []dataset.Table) error {
	if b.store == nil {
		return errors.New("blob store is required")
	}
	for _, t := range tables {
		var buf bytes.Buffer
		if err := t.WriteCSV(&buf); err != nil {
			return err
		}
		uri, err := b.store.PutObject(ctx, b.ObjectPath(t.Name), CSVContentType, &buf)
		if err != nil {
			return fmt.Errorf("store %s: %w", t.Name, err)
		}
		b.logger.Debug("table written", zap.String("table", t.Name), zap.String("uri", uri), zap.Int("rows", t.Len()))
	}
	return nil
}

// ObjectPath returns the object path for a table name.
func (b *Blob) ObjectPath(name string) string {
	if b.prefix == "" {
		return name + ".csv"
	}
	return b.prefix + "/" + name + ".csv"
}

// Multi writes to every sink in order and fails on the first error.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, tables []dataset.Table) error {
	for i, s := range m {
		if err := s.Write(ctx, tables); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}
