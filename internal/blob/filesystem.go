package blob

import (
	"slidedeck/internal/infra/blob/fs"
)

// NewFilesystem constructs a filesystem-backed blob.Store rooted at the provided path.
// Returns blob.Store to encourage call sites to depend on the interface instead of
// concrete implementations.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}

// LocalRoot returns the directory behind a filesystem store, or "" for other drivers.
func LocalRoot(s Store) string {
	if f, ok := s.(*fs.Store); ok {
		return f.Root()
	}
	return ""
}
