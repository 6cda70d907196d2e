// Package orgs provides multi-tenant organization management for the
// CenterFuze platform.
//
// # Overview
//
// This package owns the three per-organization record types: the
// Organization entity itself, its OrganizationSettings bundle, and its
// OrganizationLimits quota bundle. Settings and limits are one-to-one with
// the organization and are lazily materialized from fixed default bundles
// the first time they are read, so callers never observe a missing record
// for an organization that exists.
//
// # Consistency model
//
// Create and delete touch three records via independent single-row writes.
// There is no multi-record transaction: a failure between the organization
// insert and the settings/limits inserts leaves those records absent until
// the next read materializes them. Updates are partial: only fields
// explicitly present in the request are written, and updated_at is always
// refreshed.
//
// # Events
//
// Every successful mutation publishes a fire-and-forget domain event
// (organization.created, organization.updated, organization.deleted,
// organization.settings.updated, organization.limits.updated). Event
// delivery failures never surface to callers.
//
// # Related Packages
//
//   - pkg/modules: per-organization module entitlements
//   - pkg/events: event publication
package orgs
