package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slidedeck/internal/blob"
	"slidedeck/internal/config"
	"slidedeck/internal/infra/persistence"
	"slidedeck/internal/logging"
	"slidedeck/internal/observability"
	"slidedeck/internal/registry"
	"slidedeck/pkg/domain"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdout, stderr io.Writer

	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
	exporter    string
	traceFile   string

	cfg      *config.Config
	zap      *zap.Logger
	logger   logging.Logger
	metrics  observability.FileExporter
	tracer   observability.Tracer
	closers  []func() error
	registry *registry.Registry
	content  blob.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "deckctl",
		Short:         "Assemble linked slide decks and manage the slide registry",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write operation metrics to this file on exit")
	pf.StringVar(&a.exporter, "metrics-exporter", "", "metrics exporter (prometheus, expvar)")
	pf.StringVar(&a.traceFile, "trace-file", "", "append JSON trace spans to this file")

	root.AddCommand(newBuildCmd(a), newRegistryCmd(a), newReorganizeCmd(a), newVersionCmd(a))
	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if a.exporter != "" {
		cfg.Metrics.Exporter = a.exporter
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	a.cfg = cfg
	zl, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: a.stderr})
	if err != nil {
		return usageError{err}
	}
	a.zap = zl
	a.logger = logging.FromZap(zl)
	if a.metrics, err = observability.NewExporter(cfg.Metrics.Exporter); err != nil {
		return usageError{err}
	}
	a.tracer = observability.NopTracer()
	if a.traceFile != "" {
		f, err := os.OpenFile(a.traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		a.tracer = observability.NewJSONTracer(f)
	}
	return nil
}

// openRegistry opens the content store and the registry backed by the
// configured storage driver.
func (a *app) openRegistry(ctx context.Context) (*registry.Registry, blob.Store, error) {
	if a.registry != nil {
		return a.registry, a.content, nil
	}
	content, err := blob.Open(ctx, a.cfg.Content.StoreConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open content store: %w", err)
	}
	store, err := persistence.Open(ctx, a.cfg.Registry.StoreConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open registry: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.registry = registry.New(store,
		registry.WithResolver(registry.BlobResolver{Store: content}),
		registry.WithLogger(a.logger))
	a.content = content
	return a.registry, content, nil
}

func (a *app) openOutput(ctx context.Context) (blob.Store, error) {
	out, err := blob.Open(ctx, a.cfg.Output.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open output store: %w", err)
	}
	return out, nil
}

// close flushes metrics and logs and releases resources. It is safe to call
// when setup never ran.
func (a *app) close() error {
	var errs []error
	if a.metrics != nil && a.metricsFile != "" {
		if err := a.metrics.WriteFile(a.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	return errors.Join(errs...)
}

func countActive(records []domain.SlideRecord) int {
	return len(domain.ActiveRecords(records))
}
