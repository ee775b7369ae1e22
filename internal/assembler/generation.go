package assembler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidedeck/internal/blob"
)

const (
	pointerName = "CURRENT"
	slidesDir   = "slides"
	tocName     = "index.html"
)

func newGenerationID(now time.Time, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return now.UTC().Format("20060102T150405Z") + "-" + id
}

func randomID() string { return uuid.NewString() }

func pointerKey(prefix string) string { return joinKey(prefix, pointerName) }

func joinKey(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return path.Join(nonEmpty...)
}

// CurrentGeneration returns the generation named by the pointer under prefix.
// It returns an error matching blob.ErrNotFound before the first build.
func CurrentGeneration(ctx context.Context, store blob.Store, prefix string) (string, error) {
	_, b, err := blob.ReadAll(ctx, store, pointerKey(prefix))
	if err != nil {
		return "", err
	}
	gen := strings.TrimSpace(string(b))
	if gen == "" {
		return "", fmt.Errorf("pointer %s is empty: %w", pointerKey(prefix), blob.ErrNotFound)
	}
	return gen, nil
}

// swapPointer rewrites the pointer to gen. When the write fails the previous
// pointer value is restored.
func swapPointer(ctx context.Context, store blob.Store, prefix, gen string) error {
	key := pointerKey(prefix)
	prev, err := CurrentGeneration(ctx, store, prefix)
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("read pointer: %w", err)
	}
	opts := blob.PutOptions{ContentType: "text/plain"}
	if _, err := blob.Overwrite(ctx, store, key, []byte(gen+"\n"), opts); err != nil {
		if prev != "" {
			restoreCtx := context.WithoutCancel(ctx)
			_, _ = store.Delete(restoreCtx, key)
			_, _ = store.Put(restoreCtx, key, bytes.NewReader([]byte(prev+"\n")), opts)
		}
		return fmt.Errorf("write pointer: %w", err)
	}
	return nil
}
