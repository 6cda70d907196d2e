package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the five service tables and their indexes.
// Every statement is idempotent so EnsureSchema can run on each startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		org_id        TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		display_name  TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'active',
		owner_id      TEXT NOT NULL,
		parent_org_id TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		website       TEXT NOT NULL DEFAULT '',
		address       JSONB NOT NULL DEFAULT '{}',
		tags          TEXT[] NOT NULL DEFAULT '{}',
		metadata      JSONB NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_organizations_name ON organizations (name)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_owner ON organizations (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_status ON organizations (status)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_parent ON organizations (parent_org_id)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_created ON organizations (created_at)`,

	`CREATE TABLE IF NOT EXISTS organization_settings (
		org_id            TEXT PRIMARY KEY,
		billing_email     TEXT NOT NULL DEFAULT '',
		billing_cycle     TEXT NOT NULL DEFAULT 'monthly',
		payment_method_id TEXT NOT NULL DEFAULT '',
		tax_id            TEXT NOT NULL DEFAULT '',
		notifications     JSONB NOT NULL DEFAULT '{}',
		features          JSONB NOT NULL DEFAULT '{}',
		security          JSONB NOT NULL DEFAULT '{}',
		preferences       JSONB NOT NULL DEFAULT '{}',
		integrations      JSONB NOT NULL DEFAULT '{}',
		custom_settings   JSONB NOT NULL DEFAULT '{}',
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS organization_limits (
		org_id                  TEXT PRIMARY KEY,
		max_users               INTEGER NOT NULL,
		max_admin_users         INTEGER NOT NULL,
		max_storage_bytes       BIGINT NOT NULL,
		api_calls_per_hour      INTEGER NOT NULL,
		api_calls_per_day       INTEGER NOT NULL,
		max_projects            INTEGER NOT NULL,
		max_integrations        INTEGER NOT NULL,
		max_webhooks            INTEGER NOT NULL,
		max_custom_fields       INTEGER NOT NULL,
		max_workflows           INTEGER NOT NULL,
		max_reports             INTEGER NOT NULL,
		monthly_bandwidth_bytes BIGINT NOT NULL,
		max_file_size_bytes     BIGINT NOT NULL,
		data_retention_days     INTEGER NOT NULL,
		backup_retention_days   INTEGER NOT NULL,
		custom_limits           JSONB NOT NULL DEFAULT '{}',
		created_at              TIMESTAMPTZ NOT NULL,
		updated_at              TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS module_permissions (
		org_id          TEXT PRIMARY KEY,
		enabled_modules TEXT[] NOT NULL DEFAULT '{}',
		updated_by      TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS module_usage (
		id         BIGSERIAL PRIMARY KEY,
		org_id     TEXT NOT NULL,
		module_key TEXT NOT NULL,
		action     TEXT NOT NULL,
		actor      TEXT NOT NULL,
		timestamp  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_module_usage_org ON module_usage (org_id, module_key)`,
	`CREATE INDEX IF NOT EXISTS idx_module_usage_time ON module_usage (org_id, timestamp)`,
}

// EnsureSchema creates the service tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
