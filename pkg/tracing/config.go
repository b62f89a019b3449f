package tracing

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLPExporterEndpoint is host:port of the collector. Empty disables tracing.
	OTLPExporterEndpoint string
	OTLPExporterInsecure bool

	SamplingRatio float64

	InstanceID string
}

// NewConfig creates a new tracing configuration from environment variables
func NewConfig() *Config {
	hostName := getEnv("HOSTNAME", "")

	return &Config{
		ServiceName:          getEnv("OTEL_SERVICE_NAME", "url-indexer"),
		ServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		OTLPExporterEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPExporterInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SamplingRatio:        getEnvFloat("OTEL_TRACE_SAMPLE_RATIO", 1.0),
		InstanceID:           getEnv("INSTANCE_ID", hostName),
	}
}

// Enabled reports whether an exporter endpoint is configured.
func (c *Config) Enabled() bool {
	return c.OTLPExporterEndpoint != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return &ConfigError{Field: "ServiceName", Message: "service name cannot be empty"}
	}
	if c.SamplingRatio < 0 || c.SamplingRatio > 1 {
		return &ConfigError{Field: "SamplingRatio", Message: "sampling ratio must be between 0 and 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
