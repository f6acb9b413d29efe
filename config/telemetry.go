package config

import "time"

const defaultSampleRate = 1.0

// TelemetryConfig points the OTLP HTTP trace and metric exporters at a
// collector.
type TelemetryConfig struct {
	// Endpoint is the collector host:port, e.g. "localhost:4318".
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required,hostname_port"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the fraction of requests traced. Zero means 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	// Interval is the metric export interval. Zero keeps the SDK default.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields.
func (c *TelemetryConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
}
