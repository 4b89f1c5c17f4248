package telemetry

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	// Format is auto, json or console. auto picks console on a terminal.
	Format string `mapstructure:"format" validate:"oneof=auto json console"`
	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// MetricsConfig controls the prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "auto", Output: "stderr"}
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true, Namespace: "releaseplan"}
}
