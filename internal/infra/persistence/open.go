// Package persistence selects the registry storage backend.
package persistence

import (
	"context"
	"fmt"

	"slidedeck/internal/infra/persistence/memory"
	"slidedeck/internal/infra/persistence/postgres"
	"slidedeck/internal/infra/persistence/sqlite"
	"slidedeck/pkg/domain"
)

// Driver identifies a concrete registry storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Config selects and parameterizes the registry backend.
type Config struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
}

// Open returns the registry store named by cfg.Driver (default sqlite).
func Open(ctx context.Context, cfg Config) (domain.RegistryStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
