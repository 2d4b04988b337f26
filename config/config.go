package config

import (
	"time"

	"github.com/BaSui01/dispatchd/types"
)

// Config is the complete dispatchd configuration.
type Config struct {
	// Server holds the API server settings.
	Server ServerConfig `yaml:"server" env:"SERVER"`
	// Metrics holds the metrics endpoint settings.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
	// Log holds the logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`
	// Snapshot holds the Redis inventory mirror settings.
	Snapshot SnapshotConfig `yaml:"snapshot" env:"SNAPSHOT"`
	// Telemetry holds the OpenTelemetry settings.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
	// Seed declares extensions registered at startup.
	Seed []SeedExtension `yaml:"seed" env:"-"`
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RateLimitRPS caps requests per second per server; 0 disables.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// Development enables development encoder defaults.
	Development bool `yaml:"development" env:"DEVELOPMENT"`
}

// SnapshotConfig holds the Redis inventory mirror settings.
type SnapshotConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED"`
	Addr        string        `yaml:"addr" env:"ADDR"`
	Password    string        `yaml:"password" env:"PASSWORD"`
	DB          int           `yaml:"db" env:"DB"`
	Key         string        `yaml:"key" env:"KEY"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
}

// TelemetryConfig holds the OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// SeedExtension is the YAML form of an extension registered at startup.
type SeedExtension struct {
	Name          string          `yaml:"name"`
	DescriptorURI string          `yaml:"descriptor_uri"`
	Handler       string          `yaml:"handler"`
	Operations    []SeedOperation `yaml:"operations"`
}

// SeedOperation is the YAML form of one advertised operation. ID is
// optional; when empty it is derived from the signature before
// registration (the seeding code is a caller, and callers derive their
// own identifiers).
type SeedOperation struct {
	ID        string `yaml:"id"`
	Signature string `yaml:"signature"`
}

// ToExtension converts the seed record into a registry extension,
// parsing the handler reference and deriving missing operation
// identifiers.
func (s SeedExtension) ToExtension() (types.Extension, error) {
	handler, err := types.ParseHandlerRef(s.Handler)
	if err != nil {
		return types.Extension{}, err
	}

	ops := make([]types.Operation, 0, len(s.Operations))
	for _, op := range s.Operations {
		var id types.OperationID
		if op.ID != "" {
			id, err = types.ParseOperationID(op.ID)
			if err != nil {
				return types.Extension{}, err
			}
		} else {
			id = types.DeriveOperationID(op.Signature)
		}
		ops = append(ops, types.Operation{ID: id, Signature: op.Signature})
	}

	return types.Extension{
		Name:          s.Name,
		DescriptorURI: s.DescriptorURI,
		Handler:       handler,
		Operations:    ops,
	}, nil
}

// SeedExtensions converts every seed record, failing on the first
// malformed entry.
func (c *Config) SeedExtensions() ([]types.Extension, error) {
	exts := make([]types.Extension, 0, len(c.Seed))
	for _, s := range c.Seed {
		ext, err := s.ToExtension()
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}
