// Package logging provides the structured logger every slidedeck component
// logs through. Components depend on the Logger interface; the CLI backs it
// with zap.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger accepts a message plus alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return noopLogger{} }

// Options configures New.
type Options struct {
	Level  string // debug|info|warn|error (default info)
	Format string // json|console (default console)
	// Output replaces stderr when set.
	Output io.Writer
}

// New builds a zap logger from opts. json selects the production encoder,
// console the development one.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}
	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	var buildOpts []zap.Option
	if opts.Output != nil {
		enc := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		if cfg.Encoding == "json" {
			enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(opts.Output), cfg.Level)
		buildOpts = append(buildOpts, zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	}
	logger, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

type zapLogger struct{ s *zap.SugaredLogger }

// FromZap adapts a zap logger to Logger. A nil logger yields Nop.
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		return Nop()
	}
	return zapLogger{s: l.Sugar()}
}

func (z zapLogger) Debug(msg string, args ...any) { z.s.Debugw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.s.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.s.Warnw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.s.Errorw(msg, args...) }

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
