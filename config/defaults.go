package config

import "time"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
		Snapshot:  DefaultSnapshotConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns the default API server settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultMetricsConfig returns the default metrics endpoint settings.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Addr:      ":9091",
		Namespace: "dispatchd",
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		Development: false,
	}
}

// DefaultSnapshotConfig returns the default mirror settings, disabled.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Enabled:     false,
		Addr:        "localhost:6379",
		DB:          0,
		Key:         "dispatchd:inventory",
		DialTimeout: 5 * time.Second,
	}
}

// DefaultTelemetryConfig returns the default telemetry settings, disabled.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		ServiceName:  "dispatchd",
		OTLPEndpoint: "localhost:4317",
		SampleRate:   1.0,
	}
}
