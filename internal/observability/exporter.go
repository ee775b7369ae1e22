package observability

import (
	"encoding/json"
	"fmt"
	"os"
)

// Exporter names accepted by NewExporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterExpvar     = "expvar"
)

// Exporters lists the valid exporter names.
var Exporters = []string{ExporterPrometheus, ExporterExpvar}

// FileExporter is a Recorder whose totals can be dumped to a file.
type FileExporter interface {
	Recorder
	WriteFile(path string) error
}

// NewExporter returns the recorder registered under name. An empty name
// selects Prometheus.
func NewExporter(name string) (FileExporter, error) {
	switch name {
	case "", ExporterPrometheus:
		return NewPrometheusRecorder(), nil
	case ExporterExpvar:
		return NewExpvarRecorder(""), nil
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q (valid: %v)", name, Exporters)
	}
}

// WriteFile writes the text exposition format to path.
func (p *PrometheusRecorder) WriteFile(path string) error { return p.WriteTextfile(path) }

// WriteFile writes the current snapshot to path as indented JSON.
func (r *ExpvarRecorder) WriteFile(path string) error {
	b, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
