// Package modules implements per-organization module entitlements.
//
// Every organization has a set of enabled modules drawn from a fixed
// catalog. The enabled set is stored as a single record per organization
// and materialized lazily: an organization that has never been written
// reads back with every catalog module enabled.
//
// # Consistency model
//
// Toggle and bulk updates are single-record writes. There is no
// cross-record transaction with the usage ledger; a failed ledger append
// is logged and dropped without affecting the entitlement write.
//
// # Events
//
// Toggle emits module.enabled or module.disabled, bulk updates emit a
// single module.bulk_update carrying the full previous/new diff. Sync
// handlers reconcile local module resources from events published by
// peer service instances and never re-emit.
package modules
