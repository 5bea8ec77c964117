// Package postgres replaces output tables in a Postgres schema.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for table writes.
type Config struct {
	DSN             string
	Schema          string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type beginCloser interface {
	Begin(context.Context) (pgx.Tx, error)
	Close()
}

// TableSink writes every output table as a Postgres table of TEXT columns,
// named after the output. Each Write replaces all tables in one transaction.
type TableSink struct {
	pool   beginCloser
	schema string
}

// New connects to Postgres using cfg.
func New(ctx context.Context, cfg Config) (*TableSink, error) {
	if cfg.DSN == "" {
		return nil, errors.New("output.postgres_dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sink, err := NewWithPool(pool, cfg.Schema)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

// NewWithPool constructs a sink from an existing pool (primarily for testing).
func NewWithPool(pool beginCloser, schema string) (*TableSink, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if schema == "" {
		schema = "public"
	}
	if !validIdentifier.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}
	return &TableSink{pool: pool, schema: schema}, nil
}

// Close releases the underlying pool resources.
func (s *TableSink) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Write drops and recreates each table, then bulk-loads its rows. Column sets
// vary between runs (the stamp column is absent on empty tables), so tables
// are recreated rather than truncated.
func (s *TableSink) Write(ctx context.Context, tables []dataset.Table) (err error) {
	for _, t := range tables {
		if !validIdentifier.MatchString(t.Name) {
			return fmt.Errorf("invalid table name %q", t.Name)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	for _, t := range tables {
		if err = s.replace(ctx, tx, t); err != nil {
			return err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *TableSink) replace(ctx context.Context, tx pgx.Tx, t dataset.Table) error {
	ident := pgx.Identifier{s.schema, t.Name}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, createStatement(ident, t.Columns)); err != nil {
		return fmt.Errorf("create %s: %w", t.Name, err)
	}
	if t.Empty() {
		return nil
	}
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]any, len(r))
		for i, v := range r {
			row[i] = v
		}
		rows = append(rows, row)
	}
	n, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy %s: %w", t.Name, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy %s: wrote %d of %d rows", t.Name, n, len(rows))
	}
	return nil
}

func createStatement(ident pgx.Identifier, columns []string) string {
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		defs = append(defs, pgx.Identifier{c}.Sanitize()+" TEXT NOT NULL")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident.Sanitize(), strings.Join(defs, ", "))
}
