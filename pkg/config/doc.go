// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Service identity:
//
//	ORGSVC_SERVICE_NAME="centerfuze-organization-service"
//	ORGSVC_SERVICE_VERSION="1.0.0"
//	ORGSVC_ENVIRONMENT="development"
//
// Message bus settings:
//
//	ORGSVC_NATS_URL="nats://localhost:4222"
//	ORGSVC_NATS_USER=""
//	ORGSVC_NATS_PASSWORD=""
//	ORGSVC_NATS_SUBJECT_PREFIX="centerfuze"
//	ORGSVC_NATS_QUEUE_GROUP="organization-service"
//
// Database settings:
//
//	ORGSVC_POSTGRES_URL="postgres://localhost:5432/organizations"
//	ORGSVC_POSTGRES_MAX_CONNS="25"
//	ORGSVC_POSTGRES_MIN_CONNS="5"
//	ORGSVC_POSTGRES_TIMEOUT="30s"
//
// Observability settings:
//
//	ORGSVC_LOG_LEVEL="info"  # debug, info, warn, error
//	ORGSVC_METRICS_ENABLED="true"
//	ORGSVC_OTEL_ENABLED="false"
//	ORGSVC_OTEL_ENDPOINT="otel-collector:4317"
//	ORGSVC_HEALTH_PORT="9090"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Bus: %s\n", cfg.NATS.URL)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage/postgres: Uses database configuration
//   - pkg/observability: Uses observability configuration
package config
