// Package assembler builds a navigable HTML deck from the active registry
// records: it loads each slide's content, injects navigation, writes the
// slides and a table of contents into a fresh generation, and finally points
// the CURRENT pointer at it.
package assembler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"slidedeck/internal/blob"
	"slidedeck/internal/logging"
	"slidedeck/internal/navigation"
	"slidedeck/internal/observability"
	"slidedeck/internal/section"
	"slidedeck/pkg/domain"
)

// DefaultTitle is the TOC heading when none is configured.
const DefaultTitle = "Presentation"

// DefaultConcurrency bounds concurrent content loads.
const DefaultConcurrency = 8

// ErrEmptyDeck is returned when no slide survives filtering and loading.
var ErrEmptyDeck = errors.New("assembler: no slides to assemble")

// Lister supplies the active, ordered slide records.
type Lister interface {
	Active(ctx context.Context) ([]domain.SlideRecord, error)
}

// Artifact is one written output blob.
type Artifact struct {
	Key     string
	Ordinal string
	Slug    string
	Size    int64
}

// SkippedSlide is a slide left out of the deck, with the reason.
type SkippedSlide struct {
	Record domain.SlideRecord
	Err    error
}

func (s SkippedSlide) String() string {
	return fmt.Sprintf("skipped %s: %v", s.Record, s.Err)
}

// Result describes a completed build.
type Result struct {
	Generation    string
	TOC           Artifact
	Artifacts     []Artifact
	Assets        []Artifact
	Warnings      []SkippedSlide
	AssetWarnings []string
}

// AssembleOptions tune a single build.
type AssembleOptions struct {
	Title    string
	Subtitle string
	// Assets are content keys copied verbatim next to the slides.
	Assets []string
}

// Assembler turns registry records into a published deck generation.
type Assembler struct {
	registry    Lister
	loader      ContentLoader
	output      blob.Store
	assets      blob.Store
	palette     section.Palette
	logger      logging.Logger
	recorder    observability.Recorder
	tracer      observability.Tracer
	concurrency int
	now         func() time.Time
	newID       func() string
	prefix      string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithPalette sets the section palette.
func WithPalette(p section.Palette) Option { return func(a *Assembler) { a.palette = p } }

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(a *Assembler) { a.logger = logging.OrNop(l) } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r observability.Recorder) Option { return func(a *Assembler) { a.recorder = r } }

// WithTracer sets the tracer.
func WithTracer(t observability.Tracer) Option { return func(a *Assembler) { a.tracer = t } }

// WithConcurrency bounds concurrent content loads. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock overrides the clock used for generation names.
func WithClock(now func() time.Time) Option { return func(a *Assembler) { a.now = now } }

// WithIDSource overrides the random suffix of generation names.
func WithIDSource(fn func() string) Option { return func(a *Assembler) { a.newID = fn } }

// WithPrefix places every output key under prefix.
func WithPrefix(prefix string) Option { return func(a *Assembler) { a.prefix = prefix } }

// WithAssetSource sets the store static assets are copied from. It defaults
// to the loader's store when the loader is a BlobLoader.
func WithAssetSource(s blob.Store) Option { return func(a *Assembler) { a.assets = s } }

// New returns an Assembler reading records from registry and content through
// loader, and writing generations to output.
func New(registry Lister, loader ContentLoader, output blob.Store, opts ...Option) *Assembler {
	a := &Assembler{
		registry:    registry,
		loader:      loader,
		output:      output,
		palette:     section.DefaultPalette(),
		logger:      logging.Nop(),
		recorder:    observability.NopRecorder(),
		tracer:      observability.NopTracer(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
		newID:       randomID,
	}
	if src, ok := loader.(interface{ Source() blob.Store }); ok {
		a.assets = src.Source()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds and publishes a new generation. Slides whose content cannot
// be loaded are skipped with a warning; write failures are fatal and leave the
// previous generation current.
func (a *Assembler) Assemble(ctx context.Context, frags Fragments, opts AssembleOptions) (res Result, err error) {
	ctx, done := observability.Track(ctx, a.recorder, a.tracer, "assemble")
	defer func() { done(err) }()

	records, err := a.registry.Active(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active slides: %w", err)
	}
	contents, skipped, err := a.loadAll(ctx, records)
	if err != nil {
		return Result{}, err
	}
	deck := make([]domain.SlideRecord, 0, len(records))
	for i, r := range records {
		if _, ok := contents[i]; ok {
			deck = append(deck, r)
		}
	}
	for _, s := range skipped {
		a.logger.Warn("slide skipped", "slide", s.Record.String(), "error", s.Err)
	}
	if len(deck) == 0 {
		return Result{Warnings: skipped}, ErrEmptyDeck
	}

	res = Result{Generation: newGenerationID(a.now(), a.newID()), Warnings: skipped}
	w := &writer{store: a.output}
	defer func() {
		if err != nil {
			w.cleanup(ctx)
		}
	}()

	nav := navigation.Build(deck, a.palette)
	byslug := make(map[string]domain.SlideRecord, len(deck))
	for _, r := range deck {
		byslug[r.Slug] = r
	}
	slideBase := joinKey(a.prefix, res.Generation, slidesDir)
	for idx, r := range records {
		content, ok := contents[idx]
		if !ok {
			continue
		}
		markup, rerr := renderNav(nav[r.Slug], byslug)
		if rerr != nil {
			return Result{}, fmt.Errorf("render navigation for %s: %w", r, rerr)
		}
		doc := Inject(content, frags.Head, markup+frags.Body)
		key := path.Join(slideBase, domain.ArtifactName(r))
		info, werr := w.put(ctx, key, []byte(doc), "text/html; charset=utf-8")
		if werr != nil {
			return Result{}, fmt.Errorf("write slide %s: %w", r, werr)
		}
		res.Artifacts = append(res.Artifacts, Artifact{Key: key, Ordinal: r.Ordinal, Slug: r.Slug, Size: info.Size})
	}

	toc, err := renderTOC(deck, a.palette, opts.Title, opts.Subtitle)
	if err != nil {
		return Result{}, fmt.Errorf("render toc: %w", err)
	}
	tocKey := joinKey(a.prefix, res.Generation, tocName)
	info, err := w.put(ctx, tocKey, toc, "text/html; charset=utf-8")
	if err != nil {
		return Result{}, fmt.Errorf("write toc: %w", err)
	}
	res.TOC = Artifact{Key: tocKey, Size: info.Size}

	owners := make(map[string]string, len(res.Artifacts)+len(opts.Assets))
	for _, art := range res.Artifacts {
		owners[art.Key] = "slide " + art.Ordinal + "/" + art.Slug
	}
	for _, asset := range opts.Assets {
		dst := path.Join(slideBase, path.Base(asset))
		if owner, taken := owners[dst]; taken {
			msg := fmt.Sprintf("asset %s: %s already written by %s", asset, path.Base(dst), owner)
			res.AssetWarnings = append(res.AssetWarnings, msg)
			a.logger.Warn("asset skipped", "asset", asset, "collides_with", owner)
			continue
		}
		art, aerr := a.copyAsset(ctx, w, dst, asset)
		if aerr != nil {
			if errors.Is(aerr, blob.ErrNotFound) || errors.Is(aerr, errNoAssetSource) {
				msg := fmt.Sprintf("asset %s: %v", asset, aerr)
				res.AssetWarnings = append(res.AssetWarnings, msg)
				a.logger.Warn("asset skipped", "asset", asset, "error", aerr)
				continue
			}
			return Result{}, fmt.Errorf("copy asset %s: %w", asset, aerr)
		}
		owners[dst] = "asset " + asset
		res.Assets = append(res.Assets, art)
	}

	if err := swapPointer(ctx, a.output, a.prefix, res.Generation); err != nil {
		return Result{}, err
	}
	a.logger.Info("deck assembled",
		"generation", res.Generation,
		"slides", len(res.Artifacts),
		"skipped", len(res.Warnings),
		"assets", len(res.Assets))
	return res, nil
}

var errNoAssetSource = errors.New("no asset source configured")

func (a *Assembler) copyAsset(ctx context.Context, w *writer, dst, key string) (Artifact, error) {
	if a.assets == nil {
		return Artifact{}, errNoAssetSource
	}
	info, b, err := blob.ReadAll(ctx, a.assets, key)
	if err != nil {
		return Artifact{}, err
	}
	out, err := w.put(ctx, dst, b, info.ContentType)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Key: dst, Size: out.Size}, nil
}

// loadAll fetches content for every record concurrently. Load failures are
// returned as skipped slides; only cancellation aborts the whole load.
func (a *Assembler) loadAll(ctx context.Context, records []domain.SlideRecord) (map[int]string, []SkippedSlide, error) {
	type outcome struct {
		content string
		err     error
	}
	results := make([]outcome, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, r := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := a.loader.Load(gctx, r.ContentRef)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			results[i] = outcome{content: content, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	contents := make(map[int]string, len(records))
	var skipped []SkippedSlide
	for i, o := range results {
		if o.err != nil {
			skipped = append(skipped, SkippedSlide{
				Record: records[i],
				Err:    &ContentLoadError{Ref: records[i].ContentRef, Err: o.err},
			})
			continue
		}
		contents[i] = o.content
	}
	return contents, skipped, nil
}

// writer remembers what it wrote so a failed build can be removed.
type writer struct {
	store   blob.Store
	written []string
}

func (w *writer) put(ctx context.Context, key string, data []byte, contentType string) (blob.Info, error) {
	info, err := w.store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, err
	}
	w.written = append(w.written, key)
	return info, nil
}

func (w *writer) cleanup(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(w.written) - 1; i >= 0; i-- {
		_, _ = w.store.Delete(ctx, w.written[i])
	}
	w.written = nil
}
