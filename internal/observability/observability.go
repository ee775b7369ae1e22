// Package observability records operation timings and spans for deck builds
// and reorganizations.
package observability

import (
	"context"
	"time"
)

// Recorder receives one observation per completed operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Span is an in-flight traced operation.
type Span interface {
	End(err error)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, Span)
}

type noopRecorder struct{}

func (noopRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

type noopSpan struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopSpan) End(error) {}

// NopRecorder discards observations.
func NopRecorder() Recorder { return noopRecorder{} }

// NopTracer returns spans that do nothing.
func NopTracer() Tracer { return noopTracer{} }

// Track starts a span for operation and returns a func that ends it and
// records the outcome. Call it with the operation's final error.
func Track(ctx context.Context, rec Recorder, tr Tracer, operation string) (context.Context, func(error)) {
	if rec == nil {
		rec = NopRecorder()
	}
	if tr == nil {
		tr = NopTracer()
	}
	start := time.Now()
	ctx, span := tr.Start(ctx, operation)
	return ctx, func(err error) {
		span.End(err)
		rec.Observe(ctx, operation, err == nil, time.Since(start))
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
