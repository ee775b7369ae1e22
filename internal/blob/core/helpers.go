package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// Exists reports whether key is present in s.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	if _, err := s.Head(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadAll fetches the full contents of key.
func ReadAll(ctx context.Context, s Store, key string) (Info, []byte, error) {
	info, rc, err := s.Get(ctx, key)
	if err != nil {
		return Info{}, nil, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return Info{}, nil, fmt.Errorf("read %s: %w", key, err)
	}
	return info, b, nil
}

// Copy duplicates src to dst within s, preserving content type and metadata.
// dst must not exist.
func Copy(ctx context.Context, s Store, src, dst string) (Info, error) {
	info, b, err := ReadAll(ctx, s, src)
	if err != nil {
		return Info{}, err
	}
	return s.Put(ctx, dst, bytes.NewReader(b), PutOptions{ContentType: info.ContentType, Metadata: info.Metadata})
}

// Overwrite replaces key with data, deleting any existing blob first.
func Overwrite(ctx context.Context, s Store, key string, data []byte, opts PutOptions) (Info, error) {
	if _, err := s.Delete(ctx, key); err != nil {
		return Info{}, fmt.Errorf("delete %s: %w", key, err)
	}
	return s.Put(ctx, key, bytes.NewReader(data), opts)
}
