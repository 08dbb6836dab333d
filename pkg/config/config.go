// Package config provides the configuration of the qflock reader.
//
// The configuration is organized into sections:
//   - Reader: codec selection and decode limits
//   - Logging: zap logger settings
//   - Metrics: Prometheus exposition
//   - Tracing: OpenTelemetry span export
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Reader.MaxColumnBytes = 256 << 20
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/logger"
	"github.com/ajitpratap0/qflock/pkg/observability"
)

// Config is the top-level reader configuration.
type Config struct {
	Reader  ReaderConfig         `yaml:"reader"`
	Logging logger.Config        `yaml:"logging"`
	Metrics MetricsConfig        `yaml:"metrics"`
	Tracing observability.Config `yaml:"tracing"`
}

// ReaderConfig controls how result payloads are decoded.
type ReaderConfig struct {
	// Compression selects the codec used for columns whose wire size differs
	// from their declared size
	Compression compression.Config `yaml:"compression"`
	// MaxColumnBytes rejects columns that declare more bytes than this
	// (0 = unlimited)
	MaxColumnBytes int64 `yaml:"max_column_bytes"`
}

// MetricsConfig controls Prometheus exposition.
type MetricsConfig struct {
	// Enabled turns on metric recording
	Enabled bool `yaml:"enabled"`
	// ListenAddr serves /metrics when set, e.g. ":9102"
	ListenAddr string `yaml:"listen_addr"`
}

// NewConfig creates a Config with defaults matching the producer: zstd
// columns, a 1GiB per-column ceiling, info-level JSON logs.
func NewConfig() *Config {
	return &Config{
		Reader: ReaderConfig{
			Compression:    *compression.DefaultConfig(),
			MaxColumnBytes: 1 << 30,
		},
		Logging: logger.Config{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tracing: observability.DefaultConfig(),
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if _, err := compression.ParseAlgorithm(string(c.Reader.Compression.Algorithm)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "reader.compression.algorithm")
	}
	if c.Reader.MaxColumnBytes < 0 {
		return errors.New(errors.ErrorTypeConfig, "reader.max_column_bytes cannot be negative")
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "logging.encoding must be json or console, got %q", c.Logging.Encoding)
	}
	if c.Metrics.ListenAddr != "" && !c.Metrics.Enabled {
		return errors.New(errors.ErrorTypeConfig, "metrics.listen_addr requires metrics.enabled")
	}
	if err := c.Tracing.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "tracing")
	}
	return nil
}

// IsLimited returns true if a per-column size ceiling is configured
func (r *ReaderConfig) IsLimited() bool {
	return r.MaxColumnBytes > 0
}
