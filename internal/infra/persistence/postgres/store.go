// Package postgres persists the slide registry to a Postgres slides table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"slidedeck/internal/infra/persistence/schema"
	"slidedeck/pkg/domain"
)

var _ domain.RegistryStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/slidedeck?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps registry rows in Postgres.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN)
// and applies the slides DDL.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	stmts, err := schema.SplitStatements(schema.Postgres())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute ddl: %w", err)
		}
	}
	return &Store{db: db}, nil
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
func (s *Store) Replace(ctx context.Context, records []domain.SlideRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, schema.DeleteAll); err != nil {
		return fmt.Errorf("clear slides: %w", err)
	}
	insert := schema.Insert(func(n int) string { return "$" + strconv.Itoa(n) })
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, insert, schema.Args(r)...); err != nil {
			return fmt.Errorf("insert %s: %w", r, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
