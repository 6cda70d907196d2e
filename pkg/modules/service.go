package modules

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/centerfuze/organization-service/pkg/events"
	"github.com/centerfuze/organization-service/pkg/observability"
	"github.com/centerfuze/organization-service/pkg/orgs"
)

// Service defines the interface for module entitlement management.
type Service interface {
	Get(ctx context.Context, orgID string) (*ModuleList, error)
	Toggle(ctx context.Context, orgID, moduleKey string, enabled bool, actor string) (*ToggleResult, error)
	BulkUpdate(ctx context.Context, orgID string, moduleKeys []string, actor string) (*BulkUpdateResult, error)
	Status(ctx context.Context, orgID string) (*ModuleStatus, error)
	Available(ctx context.Context) []ModuleInfo
	EnabledModules(ctx context.Context, orgID string) ([]string, bool, error)
	Usage(ctx context.Context, orgID, moduleKey string) ([]ModuleUsage, error)
}

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db      *sql.DB
	catalog *Catalog
	events  events.Publisher
	logger  *observability.Logger
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB, catalog *Catalog, publisher events.Publisher, logger *observability.Logger) *PostgresService {
	return &PostgresService{
		db:      db,
		catalog: catalog,
		events:  publisher,
		logger:  logger,
	}
}

// Get returns the entitlement view for an organization. An organization
// with no stored entitlement record reads back with every catalog module
// enabled; that default is persisted on first access so later writes diff
// against the state the caller observed.
func (s *PostgresService) Get(ctx context.Context, orgID string) (*ModuleList, error) {
	enabled, found, err := s.enabledModules(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := s.storeDefault(ctx, orgID, enabled); err != nil {
			return nil, err
		}
	}

	summary, err := s.orgSummary(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return &ModuleList{
		Organization:   summary,
		Modules:        s.moduleStates(enabled),
		EnabledModules: enabled,
	}, nil
}

// Toggle enables or disables a single module. Unknown module keys are
// rejected. The operation is idempotent but a no-op toggle still persists,
// emits its event, and appends to the usage ledger.
func (s *PostgresService) Toggle(ctx context.Context, orgID, moduleKey string, enabled bool, actor string) (*ToggleResult, error) {
	if !s.catalog.Has(moduleKey) {
		return nil, &orgs.InvalidArgumentError{Argument: "module_key", Value: moduleKey}
	}
	if actor == "" {
		actor = "system"
	}

	current, _, err := s.enabledModules(ctx, orgID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(current))
	for _, key := range current {
		set[key] = true
	}
	if enabled {
		set[moduleKey] = true
	} else {
		delete(set, moduleKey)
	}
	next := s.normalize(set)

	if err := s.storeEnabled(ctx, orgID, next, actor); err != nil {
		return nil, err
	}

	action := "disabled"
	eventType := "organization.module.disabled"
	if enabled {
		action = "enabled"
		eventType = "organization.module.enabled"
	}

	s.events.Publish(ctx, eventType, map[string]any{
		"org_id":     orgID,
		"module_key": moduleKey,
		"enabled":    enabled,
		"updated_by": actor,
	}, nil)

	// Ledger appends are best effort; entitlement state is already written.
	if err := s.recordUsage(ctx, orgID, moduleKey, action, actor); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"org_id":     orgID,
			"module_key": moduleKey,
		}).Warn("Failed to record module usage")
	}

	s.logger.WithFields(map[string]interface{}{
		"org_id":     orgID,
		"module_key": moduleKey,
		"action":     action,
	}).Info("Toggled module")

	return &ToggleResult{
		OrgID:          orgID,
		ModuleKey:      moduleKey,
		Enabled:        enabled,
		Action:         action,
		EnabledModules: next,
	}, nil
}

// BulkUpdate replaces the full enabled set in one write. Unknown module
// keys are dropped silently. The previous set for an organization with no
// stored record is treated as empty, so the diff reports every requested
// module as added.
func (s *PostgresService) BulkUpdate(ctx context.Context, orgID string, moduleKeys []string, actor string) (*BulkUpdateResult, error) {
	if actor == "" {
		actor = "system"
	}

	previous, found, err := s.enabledModules(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !found {
		previous = []string{}
	}

	nextSet := map[string]bool{}
	for _, key := range moduleKeys {
		if s.catalog.Has(key) {
			nextSet[key] = true
		}
	}
	next := s.normalize(nextSet)

	prevSet := make(map[string]bool, len(previous))
	for _, key := range previous {
		prevSet[key] = true
	}

	added := []string{}
	removed := []string{}
	for _, key := range next {
		if !prevSet[key] {
			added = append(added, key)
		}
	}
	for _, key := range previous {
		if !nextSet[key] {
			removed = append(removed, key)
		}
	}

	if err := s.storeEnabled(ctx, orgID, next, actor); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, "organization.module.bulk_update", map[string]any{
		"org_id":           orgID,
		"enabled_modules":  next,
		"previous_modules": previous,
		"modules_added":    added,
		"modules_removed":  removed,
		"updated_by":       actor,
	}, nil)

	s.logger.WithFields(map[string]interface{}{
		"org_id":  orgID,
		"added":   len(added),
		"removed": len(removed),
	}).Info("Bulk updated modules")

	return &BulkUpdateResult{
		OrgID:          orgID,
		EnabledModules: next,
		Added:          added,
		Removed:        removed,
	}, nil
}

// Status returns the entitlement view together with a 30-day usage summary.
func (s *PostgresService) Status(ctx context.Context, orgID string) (*ModuleStatus, error) {
	list, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	summary, err := s.usageSummary(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return &ModuleStatus{
		Organization:   list.Organization,
		Modules:        list.Modules,
		EnabledModules: list.EnabledModules,
		Usage:          summary,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Available returns the full module catalog.
func (s *PostgresService) Available(ctx context.Context) []ModuleInfo {
	return s.catalog.Modules()
}

// Usage returns per-module usage ledger aggregates for an organization,
// optionally restricted to a single module.
func (s *PostgresService) Usage(ctx context.Context, orgID, moduleKey string) ([]ModuleUsage, error) {
	query := `
		SELECT module_key, COUNT(*), MAX(timestamp), COUNT(DISTINCT actor)
		FROM module_usage
		WHERE org_id = $1`
	args := []interface{}{orgID}
	if moduleKey != "" {
		query += ` AND module_key = $2`
		args = append(args, moduleKey)
	}
	query += `
		GROUP BY module_key
		ORDER BY module_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query module usage: %w", err)
	}
	defer rows.Close()

	var usage []ModuleUsage
	for rows.Next() {
		var u ModuleUsage
		var lastUsed sql.NullTime
		if err := rows.Scan(&u.ModuleKey, &u.TotalActions, &lastUsed, &u.UniqueUsersCount); err != nil {
			return nil, fmt.Errorf("failed to scan module usage: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			u.LastUsed = &t
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate module usage: %w", err)
	}

	return usage, nil
}

// EnabledModules returns the stored enabled set without materializing the
// default. found is false when no record exists yet; the returned set then
// still defaults to the full catalog.
func (s *PostgresService) EnabledModules(ctx context.Context, orgID string) ([]string, bool, error) {
	return s.enabledModules(ctx, orgID)
}

// moduleStates projects the catalog in display order with per-module
// enabled flags.
func (s *PostgresService) moduleStates(enabled []string) []ModuleState {
	set := make(map[string]bool, len(enabled))
	for _, key := range enabled {
		set[key] = true
	}
	states := make([]ModuleState, 0, s.catalog.Len())
	for _, info := range s.catalog.Modules() {
		states = append(states, ModuleState{ModuleInfo: info, Enabled: set[info.Key]})
	}
	return states
}

// enabledModules loads the stored enabled set. found is false when no
// record exists, in which case the default of all catalog modules is
// returned.
func (s *PostgresService) enabledModules(ctx context.Context, orgID string) ([]string, bool, error) {
	var enabled pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled_modules FROM module_permissions WHERE org_id = $1`, orgID,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return s.catalog.Keys(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get module permissions: %w", err)
	}

	set := make(map[string]bool, len(enabled))
	for _, key := range enabled {
		set[key] = true
	}
	return s.normalize(set), true, nil
}

// storeEnabled writes the full enabled set for an organization, recording
// who made the change.
func (s *PostgresService) storeEnabled(ctx context.Context, orgID string, enabled []string, actor string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO module_permissions (org_id, enabled_modules, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (org_id) DO UPDATE SET enabled_modules = EXCLUDED.enabled_modules, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		orgID, pq.Array(enabled), actor, now)
	if err != nil {
		return fmt.Errorf("failed to store module permissions: %w", err)
	}
	return nil
}

// storeDefault materializes the all-enabled default for an organization
// read for the first time. A record created concurrently is left as is.
func (s *PostgresService) storeDefault(ctx context.Context, orgID string, enabled []string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO module_permissions (org_id, enabled_modules, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (org_id) DO NOTHING`,
		orgID, pq.Array(enabled), now)
	if err != nil {
		return fmt.Errorf("failed to store default module permissions: %w", err)
	}
	return nil
}

// recordUsage appends one entry to the usage ledger.
func (s *PostgresService) recordUsage(ctx context.Context, orgID, moduleKey, action, actor string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO module_usage (org_id, module_key, action, actor, timestamp)
		VALUES ($1, $2, $3, $4, $5)`,
		orgID, moduleKey, action, actor, time.Now().UTC())
	return err
}

// usageSummary aggregates ledger activity over the trailing 30 days.
func (s *PostgresService) usageSummary(ctx context.Context, orgID string) (UsageSummary, error) {
	var summary UsageSummary
	since := time.Now().UTC().AddDate(0, 0, -30)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT module_key), COUNT(DISTINCT actor)
		FROM module_usage
		WHERE org_id = $1 AND timestamp >= $2`, orgID, since,
	).Scan(&summary.TotalActions30d, &summary.ActiveModulesCount, &summary.ActiveUsersCount)
	if err != nil {
		return UsageSummary{}, fmt.Errorf("failed to query usage summary: %w", err)
	}
	return summary, nil
}

// normalize returns the members of set in catalog display order.
func (s *PostgresService) normalize(set map[string]bool) []string {
	ordered := []string{}
	for _, key := range s.catalog.Keys() {
		if set[key] {
			ordered = append(ordered, key)
		}
	}
	return ordered
}

// orgSummary returns the slim organization view. An unknown org_id falls
// back to using the id as the name so module views stay serviceable while
// organization records are still propagating.
func (s *PostgresService) orgSummary(ctx context.Context, orgID string) (OrganizationSummary, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM organizations WHERE org_id = $1`, orgID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return OrganizationSummary{OrgID: orgID, Name: orgID}, nil
	}
	if err != nil {
		return OrganizationSummary{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return OrganizationSummary{OrgID: orgID, Name: name}, nil
}
