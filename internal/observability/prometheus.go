package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports operation durations and counts.
type PrometheusRecorder struct {
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	totals    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the slidedeck collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "slidedeck",
		Name:      "operation_duration_seconds",
		Help:      "Duration of deck operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	totals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slidedeck",
		Name:      "operations_total",
		Help:      "Completed deck operations by outcome.",
	}, []string{"operation", "status"})
	reg.MustRegister(durations, totals)
	return &PrometheusRecorder{registry: reg, durations: durations, totals: totals}
}

// Registry exposes the underlying registry for exposition or text dumps.
func (p *PrometheusRecorder) Registry() *prometheus.Registry { return p.registry }

// Observe records an operation outcome.
func (p *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	s := status(success)
	p.durations.WithLabelValues(operation, s).Observe(duration.Seconds())
	p.totals.WithLabelValues(operation, s).Inc()
}

// WriteTextfile dumps the registry in the text exposition format to path.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

// Multi fans observations out to every recorder.
type Multi []Recorder

// Observe implements Recorder.
func (m Multi) Observe(ctx context.Context, operation string, success bool, duration time.Duration) {
	for _, r := range m {
		if r != nil {
			r.Observe(ctx, operation, success, duration)
		}
	}
}
