package assembler

import (
	"context"
	"fmt"

	"slidedeck/internal/blob"
)

// ContentLoader fetches the HTML content of a slide by its content reference.
type ContentLoader interface {
	Load(ctx context.Context, ref string) (string, error)
}

// BlobLoader loads slide content from a blob store. Missing keys yield an
// error matching blob.ErrNotFound.
type BlobLoader struct {
	Store blob.Store
}

// Load reads ref from the store.
func (l BlobLoader) Load(ctx context.Context, ref string) (string, error) {
	if l.Store == nil {
		return "", fmt.Errorf("load %s: no content store", ref)
	}
	_, b, err := blob.ReadAll(ctx, l.Store, ref)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Source exposes the store so static assets can be copied from it.
func (l BlobLoader) Source() blob.Store { return l.Store }

// ContentLoadError reports a slide whose content could not be loaded.
type ContentLoadError struct {
	Ref string
	Err error
}

func (e *ContentLoadError) Error() string {
	return fmt.Sprintf("load content %q: %v", e.Ref, e.Err)
}

func (e *ContentLoadError) Unwrap() error { return e.Err }
