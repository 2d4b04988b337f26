package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "dispatchd", cfg.Metrics.Namespace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.Seed)
}

func TestLoader_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9000"
  read_timeout: 10s
log:
  level: debug
  format: console
snapshot:
  enabled: true
  addr: "localhost:6400"
seed:
  - name: Tokens
    descriptor_uri: ipfs://tokens-v1
    handler: "0x01"
    operations:
      - signature: transfer(address,uint256)
      - id: "0xaaaaaaaa"
        signature: approve(address,uint256)
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, "localhost:6400", cfg.Snapshot.Addr)
	require.Len(t, cfg.Seed, 1)
	assert.Equal(t, "Tokens", cfg.Seed[0].Name)

	// Defaults survive for untouched sections.
	assert.Equal(t, ":9091", cfg.Metrics.Addr)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoader_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	_, err := NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("DISPATCHD_SERVER_ADDR", ":7070")
	t.Setenv("DISPATCHD_SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DISPATCHD_LOG_LEVEL", "warn")
	t.Setenv("DISPATCHD_SNAPSHOT_DB", "2")
	t.Setenv("DISPATCHD_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Snapshot.DB)
	assert.Equal(t, 0.25, cfg.Telemetry.SampleRate)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_LOG_LEVEL", "error")

	cfg, err := NewLoader().WithEnvPrefix("CUSTOM").Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoader_Validators(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			return assert.AnError
		}).
		Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
		{
			name:    "empty server addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
		{
			name: "enabled snapshot needs addr",
			mutate: func(c *Config) {
				c.Snapshot.Enabled = true
				c.Snapshot.Addr = ""
			},
			wantErr: "snapshot.addr",
		},
		{
			name: "duplicate seed names",
			mutate: func(c *Config) {
				c.Seed = []SeedExtension{{Name: "A"}, {Name: "A"}}
			},
			wantErr: "duplicate seed extension",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
