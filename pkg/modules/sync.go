package modules

import (
	"context"
	"time"

	"github.com/centerfuze/organization-service/pkg/events"
	"github.com/centerfuze/organization-service/pkg/observability"
)

// Syncer reconciles local module resources from entitlement events
// published by peer service instances. Sync handlers never re-emit the
// events they consume; only a full sync request produces an outbound
// message.
type Syncer struct {
	service Service
	events  events.Publisher
	logger  *observability.Logger
}

// NewSyncer creates a new Syncer
func NewSyncer(service Service, publisher events.Publisher, logger *observability.Logger) *Syncer {
	return &Syncer{
		service: service,
		events:  publisher,
		logger:  logger,
	}
}

// SyncToggle reconciles resources for a single module state change.
func (s *Syncer) SyncToggle(ctx context.Context, orgID, moduleKey string, enabled bool) error {
	if enabled {
		if err := s.initializeModuleResources(ctx, orgID, moduleKey); err != nil {
			return err
		}
	} else {
		if err := s.cleanupModuleResources(ctx, orgID, moduleKey); err != nil {
			return err
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"org_id":     orgID,
		"module_key": moduleKey,
		"enabled":    enabled,
	}).Debug("Synced module state")
	return nil
}

// SyncBulkUpdate reconciles resources against an authoritative full
// enabled-set. The set is diffed against the locally stored state; an
// organization with no stored record diffs against the empty set.
func (s *Syncer) SyncBulkUpdate(ctx context.Context, orgID string, enabled []string) error {
	current, found, err := s.service.EnabledModules(ctx, orgID)
	if err != nil {
		return err
	}
	if !found {
		current = nil
	}

	currentSet := make(map[string]bool, len(current))
	for _, key := range current {
		currentSet[key] = true
	}
	enabledSet := make(map[string]bool, len(enabled))
	for _, key := range enabled {
		enabledSet[key] = true
	}

	var removed, added int
	for _, key := range current {
		if !enabledSet[key] {
			if err := s.cleanupModuleResources(ctx, orgID, key); err != nil {
				return err
			}
			removed++
		}
	}
	for _, key := range enabled {
		if !currentSet[key] {
			if err := s.initializeModuleResources(ctx, orgID, key); err != nil {
				return err
			}
			added++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"org_id":  orgID,
		"added":   added,
		"removed": removed,
	}).Debug("Synced bulk module update")
	return nil
}

// FullSync answers a peer's sync request with the organization's current
// entitlement state on organization.module.sync_response.
func (s *Syncer) FullSync(ctx context.Context, orgID string) error {
	list, err := s.service.Get(ctx, orgID)
	if err != nil {
		return err
	}

	s.events.Publish(ctx, "organization.module.sync_response", map[string]any{
		"org_id":          orgID,
		"modules":         list.Modules,
		"enabled_modules": list.EnabledModules,
		"timestamp":       time.Now().UTC().Format(time.RFC3339Nano),
	}, nil)

	s.logger.WithField("org_id", orgID).Debug("Answered module sync request")
	return nil
}

// initializeModuleResources provisions module-scoped resources when a
// module is enabled. Extension point: the core service keeps no
// module-scoped resources of its own.
func (s *Syncer) initializeModuleResources(ctx context.Context, orgID, moduleKey string) error {
	return nil
}

// cleanupModuleResources releases module-scoped resources when a module is
// disabled. Extension point, see initializeModuleResources.
func (s *Syncer) cleanupModuleResources(ctx context.Context, orgID, moduleKey string) error {
	return nil
}
