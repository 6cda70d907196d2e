// Package postgres provides the PostgreSQL connection and schema for the
// organization service.
//
// # Overview
//
// The service stores organizations, their settings and limits, module
// entitlements, and the append-only module usage ledger in five tables.
// Connect opens a pooled connection; EnsureSchema creates the tables and
// indexes idempotently at startup.
//
// # Related Packages
//
//   - pkg/orgs: organization, settings, and limits persistence
//   - pkg/modules: entitlement and usage ledger persistence
package postgres
