// Package sqlite persists the slide registry to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"slidedeck/internal/infra/persistence/schema"
	"slidedeck/pkg/domain"
)

var _ domain.RegistryStore = (*Store)(nil)

const defaultPath = "slides.db"

// Store keeps registry rows in the slides table of a SQLite database.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating when needed) the database at path and applies the
// slides DDL.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	stmts, err := schema.SplitStatements(schema.SQLite())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply ddl: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Load returns every registry row.
func (s *Store) Load(ctx context.Context) ([]domain.SlideRecord, error) {
	rows, err := s.db.QueryContext(ctx, schema.SelectAll)
	if err != nil {
		return nil, fmt.Errorf("select slides: %w", err)
	}
	return schema.ScanRecords(rows)
}

// Replace rewrites the slides table in one transaction.
func (s *Store) Replace(ctx context.Context, records []domain.SlideRecord) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, schema.DeleteAll); err != nil {
		return fmt.Errorf("clear slides: %w", err)
	}
	insert := schema.Insert(func(int) string { return "?" })
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, insert, schema.Args(r)...); err != nil {
			return fmt.Errorf("insert %s: %w", r, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
