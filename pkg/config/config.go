package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/centerfuze/organization-service/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Service identity
	Service ServiceConfig

	// NATS configuration
	NATS NATSConfig

	// Postgres configuration
	Postgres PostgresConfig

	// Health/metrics HTTP server configuration
	Server ServerConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServiceConfig identifies this service instance on the bus.
type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

// NATSConfig holds message bus connection settings
type NATSConfig struct {
	URL      string
	User     string
	Password string

	// SubjectPrefix namespaces outbound events and the inbound
	// reconciliation wildcard.
	SubjectPrefix string

	// QueueGroup shared by replicas on request subjects.
	QueueGroup string

	ReconnectWait time.Duration
}

// PostgresConfig holds database connection settings
type PostgresConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Timeout  time.Duration
}

// ServerConfig holds the health/metrics HTTP server configuration
type ServerConfig struct {
	HealthPort      string
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Service:       loadServiceConfig(),
		NATS:          loadNATSConfig(),
		Postgres:      loadPostgresConfig(),
		Server:        loadServerConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServiceConfig loads service identity from environment
func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnv("ORGSVC_SERVICE_NAME", "centerfuze-organization-service"),
		Version:     getEnv("ORGSVC_SERVICE_VERSION", "1.0.0"),
		Environment: getEnv("ORGSVC_ENVIRONMENT", "development"),
	}
}

// loadNATSConfig loads message bus configuration from environment
func loadNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           getEnv("ORGSVC_NATS_URL", "nats://localhost:4222"),
		User:          getEnv("ORGSVC_NATS_USER", ""),
		Password:      getEnv("ORGSVC_NATS_PASSWORD", ""),
		SubjectPrefix: getEnv("ORGSVC_NATS_SUBJECT_PREFIX", "centerfuze"),
		QueueGroup:    getEnv("ORGSVC_NATS_QUEUE_GROUP", "organization-service"),
		ReconnectWait: getEnvDuration("ORGSVC_NATS_RECONNECT_WAIT", 2*time.Second),
	}
}

// loadPostgresConfig loads database configuration from environment
func loadPostgresConfig() PostgresConfig {
	return PostgresConfig{
		URL:      getEnv("ORGSVC_POSTGRES_URL", "postgres://localhost:5432/organizations?sslmode=disable"),
		MaxConns: getEnvInt("ORGSVC_POSTGRES_MAX_CONNS", 25),
		MinConns: getEnvInt("ORGSVC_POSTGRES_MIN_CONNS", 5),
		Timeout:  getEnvDuration("ORGSVC_POSTGRES_TIMEOUT", 30*time.Second),
	}
}

// loadServerConfig loads the health/metrics server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		HealthPort:      getEnv("ORGSVC_HEALTH_PORT", "9090"),
		ShutdownTimeout: getEnvDuration("ORGSVC_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("ORGSVC_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("ORGSVC_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("ORGSVC_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("ORGSVC_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("ORGSVC_OTEL_SERVICE_NAME", "organization-service"),
		OTelServiceVersion: getEnv("ORGSVC_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("ORGSVC_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS URL is required")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("NATS subject prefix is required")
	}
	if c.NATS.QueueGroup == "" {
		return fmt.Errorf("NATS queue group is required")
	}
	if c.Postgres.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Postgres.MaxConns < 1 {
		return fmt.Errorf("postgres max connections must be at least 1")
	}
	if c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("postgres min connections must be between 0 and max connections")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
