package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, compression.Zstd, cfg.Reader.Compression.Algorithm)
	assert.Equal(t, int64(1<<30), cfg.Reader.MaxColumnBytes)
	assert.True(t, cfg.Reader.IsLimited())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown codec", func(c *Config) { c.Reader.Compression.Algorithm = "brotli" }},
		{"negative limit", func(c *Config) { c.Reader.MaxColumnBytes = -1 }},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }},
		{"listen without enable", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.ListenAddr = ":9102"
		}},
		{"sampling rate", func(c *Config) { c.Tracing.SamplingRate = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "got %v", err)
		})
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("QFLOCK_CODEC", "lz4")

	path := filepath.Join(t.TempDir(), "qflock.yaml")
	content := `
reader:
  compression:
    algorithm: ${QFLOCK_CODEC}
  max_column_bytes: 4096
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, compression.LZ4, cfg.Reader.Compression.Algorithm)
	assert.Equal(t, int64(4096), cfg.Reader.MaxColumnBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep defaults
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "qflock", cfg.Tracing.ServiceName)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile), "got %v", err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reader: [unclosed"), 0600))
	_, err = Load(path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "got %v", err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("reader:\n  max_column_bytes: -5\n"), 0600))
	_, err = Load(invalid)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "got %v", err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	cfg := NewConfig()
	cfg.Reader.Compression.Algorithm = compression.S2
	cfg.Metrics.ListenAddr = ":9102"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "x")
	assert.Equal(t, "x-y-", substituteEnvVars("${A}-y-${QFLOCK_UNSET_VAR}"))
	assert.Equal(t, "open ${A", substituteEnvVars("open ${A"))
}
