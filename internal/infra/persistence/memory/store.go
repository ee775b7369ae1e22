// Package memory provides an in-process registry store for tests, dry runs
// and ephemeral decks.
package memory

import (
	"context"
	"sync"

	"slidedeck/pkg/domain"
)

var _ domain.RegistryStore = (*Store)(nil)

// Store keeps the registry rows in memory. Replace swaps the whole set under
// a lock, so readers never observe a partial write.
type Store struct {
	mu      sync.RWMutex
	records []domain.SlideRecord
}

// NewStore returns a store seeded with records.
func NewStore(records ...domain.SlideRecord) *Store {
	return &Store{records: domain.CloneRecords(records)}
}

// Load returns a copy of the stored records.
func (s *Store) Load(ctx context.Context) ([]domain.SlideRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneRecords(s.records), nil
}

// Replace swaps the stored set for records.
func (s *Store) Replace(ctx context.Context, records []domain.SlideRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := domain.CloneRecords(records)
	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
