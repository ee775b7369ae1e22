// Package registry owns the ordered slide registry. It validates every
// candidate record set before handing it to the storage backend, so the
// stored registry always satisfies the ordinal and slug uniqueness rules.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"slidedeck/internal/blob"
	"slidedeck/internal/logging"
	"slidedeck/pkg/domain"
)

// ContentResolver reports whether a content reference exists.
type ContentResolver interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// BlobResolver resolves content references as keys of a blob store.
type BlobResolver struct {
	Store blob.Store
}

// Exists implements ContentResolver.
func (b BlobResolver) Exists(ctx context.Context, ref string) (bool, error) {
	return blob.Exists(ctx, b.Store, ref)
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver makes ReplaceAll reject records whose content does not resolve.
func WithResolver(r ContentResolver) Option {
	return func(reg *Registry) { reg.resolver = r }
}

// WithLogger sets the registry logger.
func WithLogger(l logging.Logger) Option {
	return func(reg *Registry) { reg.logger = logging.OrNop(l) }
}

// Registry is the explicit handle to the slide registry. It is safe for
// concurrent use; writers are serialized.
type Registry struct {
	store    domain.RegistryStore
	resolver ContentResolver
	logger   logging.Logger
	mu       sync.Mutex
}

// New wraps store.
func New(store domain.RegistryStore, opts ...Option) *Registry {
	r := &Registry{store: store, logger: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns every record in natural ordinal order.
func (r *Registry) List(ctx context.Context) ([]domain.SlideRecord, error) {
	records, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	domain.SortRecords(records)
	return records, nil
}

// Active returns the active records in natural ordinal order.
func (r *Registry) Active(ctx context.Context) ([]domain.SlideRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActiveRecords(records), nil
}

// ReplaceAll validates records and, when every invariant holds, swaps them in
// as the new registry. A violation yields *IntegrityError and leaves the
// stored registry unchanged.
func (r *Registry) ReplaceAll(ctx context.Context, records []domain.SlideRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := Normalize(records)
	violations := check(normalized)
	if len(violations) == 0 && r.resolver != nil {
		unresolved, err := r.unresolved(ctx, normalized)
		if err != nil {
			return err
		}
		violations = unresolved
	}
	if len(violations) > 0 {
		return &IntegrityError{Violations: violations}
	}
	domain.SortRecords(normalized)
	if err := r.store.Replace(ctx, normalized); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	r.logger.Info("registry replaced", "records", len(normalized), "active", len(domain.ActiveRecords(normalized)))
	return nil
}

// Validate runs the structural checks of ReplaceAll without resolving
// content or writing anything.
func (r *Registry) Validate(records []domain.SlideRecord) error {
	return Validate(records)
}

// Validate checks ordinal and slug uniqueness plus required fields.
func Validate(records []domain.SlideRecord) error {
	if v := check(Normalize(records)); len(v) > 0 {
		return &IntegrityError{Violations: v}
	}
	return nil
}

// Normalize returns trimmed copies of records with sections defaulted.
func Normalize(records []domain.SlideRecord) []domain.SlideRecord {
	out := make([]domain.SlideRecord, len(records))
	for i, rec := range records {
		out[i] = rec.Normalized()
	}
	return out
}

func check(records []domain.SlideRecord) []Violation {
	var out []Violation
	add := func(rec domain.SlideRecord, reason string) {
		out = append(out, Violation{Ordinal: rec.Ordinal, Slug: rec.Slug, Reason: reason})
	}
	slugs := make(map[string]int, len(records))
	for i, rec := range records {
		switch {
		case rec.Ordinal == "":
			add(rec, "missing ordinal")
		case !domain.ValidOrdinal(rec.Ordinal):
			add(rec, fmt.Sprintf("invalid ordinal %q", rec.Ordinal))
		}
		if !domain.ValidSlug(rec.Slug) {
			add(rec, fmt.Sprintf("invalid slug %q", rec.Slug))
		}
		if rec.Title == "" {
			add(rec, "missing title")
		}
		if rec.ContentRef == "" {
			add(rec, "missing content reference")
		}
		for j := 0; j < i; j++ {
			if rec.Ordinal != "" && domain.CompareOrdinals(records[j].Ordinal, rec.Ordinal) == 0 {
				add(rec, fmt.Sprintf("duplicate ordinal (also %s)", records[j]))
				break
			}
		}
		if rec.Slug != "" {
			if j, ok := slugs[rec.Slug]; ok {
				add(rec, fmt.Sprintf("duplicate slug (also %s)", records[j]))
			} else {
				slugs[rec.Slug] = i
			}
		}
	}
	return out
}

func (r *Registry) unresolved(ctx context.Context, records []domain.SlideRecord) ([]Violation, error) {
	var out []Violation
	for _, rec := range records {
		ok, err := r.resolver.Exists(ctx, rec.ContentRef)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("resolve %s: %w", rec.ContentRef, err)
		}
		if !ok {
			out = append(out, Violation{Ordinal: rec.Ordinal, Slug: rec.Slug, Reason: fmt.Sprintf("content %q not found", rec.ContentRef)})
		}
	}
	return out, nil
}
