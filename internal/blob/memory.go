package blob

import (
	memorystore "slidedeck/internal/infra/blob/memory"
)

// MemoryStore is the in-memory driver, exposed for tests that inject write failures.
type MemoryStore = memorystore.Store

// NewMemory returns an in-memory blob store.
func NewMemory() *MemoryStore { return memorystore.New() }
