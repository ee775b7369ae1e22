package domain

import "context"

// RegistryStore is the durable, key-ordered table behind the slide registry.
// Implementations read and write the whole record set at once.
type RegistryStore interface {
	// Load returns every stored record. Ordering is not guaranteed.
	Load(ctx context.Context) ([]SlideRecord, error)
	// Replace swaps the stored record set for records in a single
	// transaction. On error the previous set MUST remain intact.
	Replace(ctx context.Context, records []SlideRecord) error
	// Close releases backend resources.
	Close() error
}
