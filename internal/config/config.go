// Package config loads deckctl configuration from a YAML file with
// SLIDEDECK_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"slidedeck/internal/blob"
	"slidedeck/internal/infra/persistence"
	"slidedeck/internal/observability"
	"slidedeck/internal/section"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "deck.yaml"

// Config holds all deckctl configuration.
type Config struct {
	Deck     DeckConfig      `yaml:"deck"`
	Registry RegistryConfig  `yaml:"registry"`
	Content  BlobConfig      `yaml:"content"`
	Output   OutputConfig    `yaml:"output"`
	Sections section.Palette `yaml:"sections"`
	Logging  LoggingConfig   `yaml:"logging"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

// DeckConfig describes the assembled deck.
type DeckConfig struct {
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	Assets   []string `yaml:"assets"`
	// HeadFragment and BodyFragment name files whose contents replace the
	// built-in navigation styles and scripts.
	HeadFragment string `yaml:"head_fragment"`
	BodyFragment string `yaml:"body_fragment"`
	Concurrency  int    `yaml:"concurrency"`
}

// RegistryConfig selects the registry storage backend.
type RegistryConfig struct {
	Driver      string `yaml:"driver"` // memory, sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// BlobConfig selects a blob store.
type BlobConfig struct {
	Driver string   `yaml:"driver"` // fs, s3, memory
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 driver. Credentials come from the AWS default
// chain.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// OutputConfig is the artifact store plus the key prefix builds go under.
type OutputConfig struct {
	BlobConfig `yaml:",inline"`
	Prefix     string `yaml:"prefix"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// MetricsConfig selects the operation metrics exporter.
type MetricsConfig struct {
	Exporter string `yaml:"exporter"` // prometheus, expvar
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Deck:     DeckConfig{Title: "Presentation", Concurrency: 8},
		Registry: RegistryConfig{Driver: string(persistence.DriverSQLite), SQLitePath: "slides.db"},
		Content:  BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: "content", S3: S3Config{Region: "us-east-1"}},
		Output: OutputConfig{
			BlobConfig: BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: "build", S3: S3Config{Region: "us-east-1"}},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{Exporter: observability.ExporterPrometheus},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setString("SLIDEDECK_STORAGE_DRIVER", &c.Registry.Driver)
	setString("SLIDEDECK_SQLITE_PATH", &c.Registry.SQLitePath)
	setString("SLIDEDECK_POSTGRES_DSN", &c.Registry.PostgresDSN)
	setString("SLIDEDECK_BLOB_DRIVER", &c.Content.Driver)
	setString("SLIDEDECK_BLOB_FS_ROOT", &c.Content.FSRoot)
	setString("SLIDEDECK_BLOB_S3_BUCKET", &c.Content.S3.Bucket)
	setString("SLIDEDECK_BLOB_S3_REGION", &c.Content.S3.Region)
	setString("SLIDEDECK_BLOB_S3_ENDPOINT", &c.Content.S3.Endpoint)
	setString("SLIDEDECK_BLOB_S3_PREFIX", &c.Content.S3.Prefix)
	setString("SLIDEDECK_OUTPUT_DRIVER", &c.Output.Driver)
	setString("SLIDEDECK_OUTPUT_FS_ROOT", &c.Output.FSRoot)
	setString("SLIDEDECK_OUTPUT_PREFIX", &c.Output.Prefix)
	setString("SLIDEDECK_LOG_LEVEL", &c.Logging.Level)
	setString("SLIDEDECK_LOG_FORMAT", &c.Logging.Format)
	setString("SLIDEDECK_METRICS_EXPORTER", &c.Metrics.Exporter)
	if v := os.Getenv("SLIDEDECK_BLOB_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SLIDEDECK_BLOB_S3_PATH_STYLE: %w", err)
		}
		c.Content.S3.PathStyle = b
	}
	return nil
}

var (
	validRegistryDrivers = []string{string(persistence.DriverMemory), string(persistence.DriverSQLite), string(persistence.DriverPostgres)}
	validBlobDrivers     = []string{string(blob.DriverFilesystem), string(blob.DriverS3), string(blob.DriverMemory)}
	validLogFormats      = []string{"json", "console"}
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !oneOf(c.Registry.Driver, validRegistryDrivers) {
		return fmt.Errorf("invalid registry driver %q (valid: %v)", c.Registry.Driver, validRegistryDrivers)
	}
	for name, b := range map[string]BlobConfig{"content": c.Content, "output": c.Output.BlobConfig} {
		if !oneOf(b.Driver, validBlobDrivers) {
			return fmt.Errorf("invalid %s driver %q (valid: %v)", name, b.Driver, validBlobDrivers)
		}
		if b.Driver == string(blob.DriverS3) && b.S3.Bucket == "" {
			return fmt.Errorf("%s: s3 driver requires a bucket", name)
		}
	}
	if c.Logging.Format != "" && !oneOf(c.Logging.Format, validLogFormats) {
		return fmt.Errorf("invalid log format %q (valid: %v)", c.Logging.Format, validLogFormats)
	}
	if c.Metrics.Exporter != "" && !oneOf(c.Metrics.Exporter, observability.Exporters) {
		return fmt.Errorf("invalid metrics exporter %q (valid: %v)", c.Metrics.Exporter, observability.Exporters)
	}
	if c.Deck.Concurrency < 0 {
		return fmt.Errorf("deck concurrency must not be negative")
	}
	return nil
}

// StoreConfig maps b onto the blob factory configuration.
func (b BlobConfig) StoreConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(b.Driver),
		FSRoot: b.FSRoot,
		S3: blob.S3Config{
			Bucket:    b.S3.Bucket,
			Region:    b.S3.Region,
			Endpoint:  b.S3.Endpoint,
			Prefix:    b.S3.Prefix,
			PathStyle: b.S3.PathStyle,
		},
	}
}

// StoreConfig maps r onto the registry backend configuration.
func (r RegistryConfig) StoreConfig() persistence.Config {
	return persistence.Config{
		Driver:      persistence.Driver(r.Driver),
		SQLitePath:  r.SQLitePath,
		PostgresDSN: r.PostgresDSN,
	}
}

// Palette returns the default palette overlaid with the configured sections.
func (c *Config) Palette() section.Palette {
	return section.DefaultPalette().Merge(c.Sections)
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}
