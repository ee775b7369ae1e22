// Package reorg applies bulk reorganizations to the slide registry and its
// content. A plan maps old identities to new ones as an arbitrary
// permutation, cycles included. Every moving source is copied into a private
// staging namespace before any destination is written, and the registry swap
// is the single commit point: a failure before it rolls the content back, a
// failure after it is only reported.
package reorg

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slidedeck/internal/blob"
	"slidedeck/internal/logging"
	"slidedeck/internal/observability"
	"slidedeck/internal/registry"
	"slidedeck/pkg/domain"
)

// StagingRoot is the content-store prefix under which runs stage copies.
const StagingRoot = ".staging"

// DefaultConcurrency bounds concurrent staging copies.
const DefaultConcurrency = 4

// Registry is the slice of the slide registry the reorganizer needs.
type Registry interface {
	List(ctx context.Context) ([]domain.SlideRecord, error)
	ReplaceAll(ctx context.Context, records []domain.SlideRecord) error
}

// Move is one content relocation.
type Move struct {
	From    string
	To      string
	Ordinal string
	Slug    string
}

// Report describes a previewed or applied reorganization.
type Report struct {
	RunID    string
	Records  []domain.SlideRecord
	Moves    []Move
	Removed  []domain.SlideRecord
	Pruned   []string
	Warnings []string
}

// Reorganizer applies plans to one registry and content store. Runs are
// serialized.
type Reorganizer struct {
	registry    Registry
	content     blob.Store
	logger      logging.Logger
	recorder    observability.Recorder
	tracer      observability.Tracer
	concurrency int
	newID       func() string
	mu          sync.Mutex
}

// Option configures a Reorganizer.
type Option func(*Reorganizer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(r *Reorganizer) { r.logger = logging.OrNop(l) } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec observability.Recorder) Option {
	return func(r *Reorganizer) { r.recorder = rec }
}

// WithTracer sets the tracer.
func WithTracer(t observability.Tracer) Option { return func(r *Reorganizer) { r.tracer = t } }

// WithConcurrency bounds concurrent staging copies. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(r *Reorganizer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunIDSource overrides run id generation.
func WithRunIDSource(fn func() string) Option { return func(r *Reorganizer) { r.newID = fn } }

// New returns a Reorganizer over reg and the content store.
func New(reg Registry, content blob.Store, opts ...Option) *Reorganizer {
	r := &Reorganizer{
		registry:    reg,
		content:     content,
		logger:      logging.Nop(),
		recorder:    observability.NopRecorder(),
		tracer:      observability.NopTracer(),
		concurrency: DefaultConcurrency,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolved is a validated plan ready to apply.
type resolved struct {
	current []domain.SlideRecord
	records []domain.SlideRecord
	moves   []Move
	removed []domain.SlideRecord
	// occupied destinations that must be backed up before being overwritten.
	occupied []string
	// sources whose keys are not reused by any destination.
	vacated []string
}

// Preview validates plan and reports what Apply would do without touching
// the registry or content.
func (r *Reorganizer) Preview(ctx context.Context, plan Plan) (Report, error) {
	res, err := r.resolve(ctx, plan)
	if err != nil {
		return Report{}, err
	}
	return Report{Records: res.records, Moves: res.moves, Removed: res.removed}, nil
}

// Apply executes plan. On any error before the registry swap the registry
// and content are left as they were.
func (r *Reorganizer) Apply(ctx context.Context, plan Plan) (rep Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, done := observability.Track(ctx, r.recorder, r.tracer, "reorganize")
	defer func() { done(err) }()

	res, err := r.resolve(ctx, plan)
	if err != nil {
		return Report{}, err
	}
	runID := r.newID()
	rep = Report{RunID: runID, Records: res.records, Moves: res.moves, Removed: res.removed}
	st := &run{store: r.content, id: runID, concurrency: r.concurrency}

	if err := st.stage(ctx, res); err != nil {
		_ = st.cleanup(context.WithoutCancel(ctx))
		r.logger.Error("reorganization staging failed", "run", runID, "error", err)
		return Report{}, &StagingError{RunID: runID, Err: err}
	}
	if err := st.writeDestinations(ctx); err != nil {
		err = errors.Join(err, st.rollback(context.WithoutCancel(ctx)))
		_ = st.cleanup(context.WithoutCancel(ctx))
		r.logger.Error("reorganization write failed", "run", runID, "error", err)
		return Report{}, &CommitError{RunID: runID, Phase: "write destinations", Err: err}
	}
	if err := ctx.Err(); err != nil {
		err = errors.Join(err, st.rollback(context.WithoutCancel(ctx)))
		_ = st.cleanup(context.WithoutCancel(ctx))
		return Report{}, &CommitError{RunID: runID, Phase: "swap registry", Err: err}
	}
	if err := r.registry.ReplaceAll(ctx, res.records); err != nil {
		err = errors.Join(err, st.rollback(context.WithoutCancel(ctx)))
		_ = st.cleanup(context.WithoutCancel(ctx))
		r.logger.Error("reorganization registry swap failed", "run", runID, "error", err)
		return Report{}, &CommitError{RunID: runID, Phase: "swap registry", Err: err}
	}

	// Committed. Nothing below undoes the swap.
	post := context.WithoutCancel(ctx)
	for _, key := range res.vacated {
		if _, derr := r.content.Delete(post, key); derr != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("remove vacated %s: %v", key, derr))
		}
	}
	if plan.PruneOrphans {
		rep.Pruned, rep.Warnings = r.prune(post, res, rep.Warnings)
	}
	if leftover := st.cleanup(post); leftover != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("remove staging %s: %v", st.prefix(), leftover))
	}
	r.logger.Info("registry reorganized",
		"run", runID,
		"records", len(res.records),
		"moves", len(res.moves),
		"removed", len(res.removed),
		"warnings", len(rep.Warnings))
	return rep, nil
}

// prune deletes the content of removed records that nothing references any more.
func (r *Reorganizer) prune(ctx context.Context, res resolved, warnings []string) ([]string, []string) {
	keep := make(map[string]struct{}, len(res.records))
	for _, rec := range res.records {
		keep[rec.ContentRef] = struct{}{}
	}
	var pruned []string
	for _, rec := range res.removed {
		if _, ok := keep[rec.ContentRef]; ok {
			continue
		}
		ok, err := r.content.Delete(ctx, rec.ContentRef)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("prune %s: %v", rec.ContentRef, err))
		case ok:
			pruned = append(pruned, rec.ContentRef)
		}
	}
	return pruned, warnings
}

type source struct {
	key    string
	record *domain.SlideRecord
}

// resolve validates plan against the current registry and content.
func (r *Reorganizer) resolve(ctx context.Context, plan Plan) (resolved, error) {
	current, err := r.registry.List(ctx)
	if err != nil {
		return resolved{}, fmt.Errorf("load registry: %w", err)
	}
	var issues []string
	addf := func(format string, args ...any) { issues = append(issues, fmt.Sprintf(format, args...)) }
	if len(plan.Targets) == 0 {
		addf("plan declares no slides")
	}

	managed := make(map[string]struct{}, len(current))
	for _, rec := range current {
		managed[rec.ContentRef] = struct{}{}
	}

	res := resolved{current: current}
	sources := make([]source, len(plan.Targets))
	claimed := make(map[string]int)
	dests := make(map[string]int)
	for i, t := range plan.Targets {
		label := fmt.Sprintf("slide %q", t.Ordinal)
		if t.Ordinal == "" {
			addf("slide #%d: missing ordinal", i+1)
		}
		if t.From == "" {
			addf("%s: missing from", label)
			continue
		}
		src, serr := r.resolveSource(ctx, t.From, current)
		if serr != nil {
			if errors.Is(serr, context.Canceled) || errors.Is(serr, context.DeadlineExceeded) {
				return resolved{}, serr
			}
			addf("%s: %v", label, serr)
			continue
		}
		if j, ok := claimed[src.key]; ok {
			addf("%s: source %s already claimed by slide %q", label, src.key, plan.Targets[j].Ordinal)
			continue
		}
		claimed[src.key] = i
		sources[i] = src

		rec := newRecord(t, src, plan.ContentPrefix)
		if src.record == nil && (t.Slug == "" || t.Title == "") {
			addf("%s: content %s is not in the registry, so slug and title are required", label, src.key)
		}
		if j, ok := dests[rec.ContentRef]; ok {
			addf("%s: content %s already targeted by slide %q", label, rec.ContentRef, plan.Targets[j].Ordinal)
		} else {
			dests[rec.ContentRef] = i
		}
		res.records = append(res.records, rec)
		if src.key != rec.ContentRef {
			res.moves = append(res.moves, Move{From: src.key, To: rec.ContentRef, Ordinal: rec.Ordinal, Slug: rec.Slug})
		}
	}
	if len(issues) == 0 {
		var ie *registry.IntegrityError
		if err := registry.Validate(res.records); errors.As(err, &ie) {
			for _, v := range ie.Violations {
				addf("%s", v)
			}
		} else if err != nil {
			addf("%v", err)
		}
	}
	if len(issues) == 0 {
		for _, mv := range res.moves {
			ok, err := blob.Exists(ctx, r.content, mv.To)
			if err != nil {
				return resolved{}, fmt.Errorf("check destination %s: %w", mv.To, err)
			}
			if !ok {
				continue
			}
			_, isManaged := managed[mv.To]
			_, isSource := claimed[mv.To]
			if !isManaged && !isSource {
				addf("slide %q: destination %s holds content the registry does not track", mv.Ordinal, mv.To)
				continue
			}
			res.occupied = append(res.occupied, mv.To)
		}
	}
	if len(issues) > 0 {
		return resolved{}, &ValidationError{Issues: issues}
	}

	res.records = registry.Normalize(res.records)
	domain.SortRecords(res.records)
	for _, mv := range res.moves {
		if _, reused := dests[mv.From]; !reused {
			res.vacated = append(res.vacated, mv.From)
		}
	}
	sort.Strings(res.vacated)
	used := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if s.record != nil {
			used[s.record.Slug] = struct{}{}
		}
	}
	for _, rec := range current {
		if _, ok := used[rec.Slug]; !ok {
			res.removed = append(res.removed, rec)
		}
	}
	return res, nil
}

// resolveSource finds the single registry record or content blob named by
// from. Registry matches win over raw content keys.
func (r *Reorganizer) resolveSource(ctx context.Context, from string, current []domain.SlideRecord) (source, error) {
	var match *domain.SlideRecord
	for i := range current {
		rec := &current[i]
		if rec.Slug != from && rec.ContentRef != from && domain.CompareOrdinals(rec.Ordinal, from) != 0 {
			continue
		}
		if match != nil && match.Slug != rec.Slug {
			return source{}, fmt.Errorf("from %q is ambiguous: matches %s and %s", from, match, rec)
		}
		match = rec
	}
	key := from
	if match != nil {
		key = match.ContentRef
	}
	ok, err := blob.Exists(ctx, r.content, key)
	if err != nil {
		return source{}, err
	}
	if !ok {
		if match != nil {
			return source{}, fmt.Errorf("content %s of %s not found", key, match)
		}
		return source{}, fmt.Errorf("from %q matches no slide or content", from)
	}
	if match == nil {
		return source{key: key}, nil
	}
	rec := *match
	return source{key: key, record: &rec}, nil
}

func newRecord(t Target, src source, contentPrefix string) domain.SlideRecord {
	rec := domain.SlideRecord{Ordinal: t.Ordinal, Active: true}
	if src.record != nil {
		rec = *src.record
		rec.Ordinal = t.Ordinal
	}
	if t.Slug != "" {
		rec.Slug = t.Slug
	}
	if t.Title != "" {
		rec.Title = t.Title
	}
	if t.Section != "" {
		rec.Section = t.Section
	}
	if t.Active != nil {
		rec.Active = *t.Active
	}
	switch {
	case t.ContentRef != "":
		rec.ContentRef = t.ContentRef
	case contentPrefix != "":
		rec.ContentRef = contentPrefix + domain.ArtifactName(rec)
	default:
		rec.ContentRef = src.key
	}
	return rec
}

// run holds the staging state of one Apply.
type run struct {
	store       blob.Store
	id          string
	concurrency int

	mu      sync.Mutex
	staged  []string
	writes  []stagedWrite
	backups map[string]string
	touched []string
}

type stagedWrite struct {
	staged string
	dest   string
}

func (r *run) prefix() string { return path.Join(StagingRoot, r.id) }

// stage copies every moving source and every occupied destination into the
// run's namespace. Nothing outside the namespace is written.
func (r *run) stage(ctx context.Context, res resolved) error {
	r.writes = make([]stagedWrite, len(res.moves))
	r.backups = make(map[string]string, len(res.occupied))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, mv := range res.moves {
		key := path.Join(r.prefix(), "src", fmt.Sprint(i))
		r.writes[i] = stagedWrite{staged: key, dest: mv.To}
		g.Go(func() error { return r.copyIn(gctx, mv.From, key) })
	}
	for i, dest := range res.occupied {
		key := path.Join(r.prefix(), "backup", fmt.Sprint(i))
		r.backups[dest] = key
		g.Go(func() error { return r.copyIn(gctx, dest, key) })
	}
	return g.Wait()
}

func (r *run) copyIn(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := blob.Copy(ctx, r.store, from, to); err != nil {
		return fmt.Errorf("stage %s: %w", from, err)
	}
	r.mu.Lock()
	r.staged = append(r.staged, to)
	r.mu.Unlock()
	return nil
}

// writeDestinations replaces each destination with its staged copy.
func (r *run) writeDestinations(ctx context.Context) error {
	for _, w := range r.writes {
		info, data, err := blob.ReadAll(ctx, r.store, w.staged)
		if err != nil {
			return fmt.Errorf("read staged %s: %w", w.staged, err)
		}
		r.touched = append(r.touched, w.dest)
		opts := blob.PutOptions{ContentType: info.ContentType, Metadata: info.Metadata}
		if _, err := blob.Overwrite(ctx, r.store, w.dest, data, opts); err != nil {
			return fmt.Errorf("write %s: %w", w.dest, err)
		}
	}
	return nil
}

// rollback restores every touched destination from its backup, or removes
// it when it did not exist before the run.
func (r *run) rollback(ctx context.Context) error {
	var errs []error
	for i := len(r.touched) - 1; i >= 0; i-- {
		dest := r.touched[i]
		backup, ok := r.backups[dest]
		if !ok {
			if _, err := r.store.Delete(ctx, dest); err != nil {
				errs = append(errs, fmt.Errorf("rollback %s: %w", dest, err))
			}
			continue
		}
		info, data, err := blob.ReadAll(ctx, r.store, backup)
		if err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", dest, err))
			continue
		}
		opts := blob.PutOptions{ContentType: info.ContentType, Metadata: info.Metadata}
		if _, err := blob.Overwrite(ctx, r.store, dest, data, opts); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", dest, err))
		}
	}
	r.touched = nil
	return errors.Join(errs...)
}

// cleanup removes every staged copy of the run.
func (r *run) cleanup(ctx context.Context) error {
	r.mu.Lock()
	staged := append([]string(nil), r.staged...)
	r.staged = nil
	r.mu.Unlock()
	var errs []error
	for _, key := range staged {
		if _, err := r.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
