package transport

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
)

// toggleModuleRequest is the payload for module.toggle.
type toggleModuleRequest struct {
	OrgID     string `json:"org_id"`
	ModuleKey string `json:"module_key"`
	Enabled   bool   `json:"enabled"`
	UpdatedBy string `json:"updated_by"`
}

// bulkUpdateRequest is the payload for module.bulk_update.
type bulkUpdateRequest struct {
	OrgID          string   `json:"org_id"`
	EnabledModules []string `json:"enabled_modules"`
	UpdatedBy      string   `json:"updated_by"`
}

// usageStatsRequest is the payload for module.usage.stats.
type usageStatsRequest struct {
	OrgID     string `json:"org_id"`
	ModuleKey string `json:"module_key"`
}

func (s *Server) handleGetModules(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	list, err := s.modules.Get(ctx, req.OrgID)
	if err != nil {
		return domainErrorResponse(err, "GET_MODULES_ERROR", "failed to get modules"), false
	}
	return successResponse("Modules retrieved successfully", list), true
}

func (s *Server) handleToggleModule(ctx context.Context, data []byte) ([]byte, bool) {
	var req toggleModuleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	result, err := s.modules.Toggle(ctx, req.OrgID, req.ModuleKey, req.Enabled, req.UpdatedBy)
	if err != nil {
		return domainErrorResponse(err, "TOGGLE_MODULE_ERROR", "failed to toggle module"), false
	}
	return successResponse("Module "+result.Action+" successfully", result), true
}

func (s *Server) handleBulkUpdateModules(ctx context.Context, data []byte) ([]byte, bool) {
	var req bulkUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	result, err := s.modules.BulkUpdate(ctx, req.OrgID, req.EnabledModules, req.UpdatedBy)
	if err != nil {
		return domainErrorResponse(err, "BULK_UPDATE_ERROR", "failed to bulk update modules"), false
	}
	return successResponse("Modules updated successfully", result), true
}

func (s *Server) handleModuleStatus(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	status, err := s.modules.Status(ctx, req.OrgID)
	if err != nil {
		return domainErrorResponse(err, "MODULE_STATUS_ERROR", "failed to get module status"), false
	}
	return successResponse("Module status retrieved successfully", status), true
}

func (s *Server) handleAvailableModules(ctx context.Context, data []byte) ([]byte, bool) {
	return successResponse("Available modules retrieved successfully", map[string]any{
		"modules": s.modules.Available(ctx),
	}), true
}

func (s *Server) handleModuleUsage(ctx context.Context, data []byte) ([]byte, bool) {
	var req usageStatsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	usage, err := s.modules.Usage(ctx, req.OrgID, req.ModuleKey)
	if err != nil {
		return domainErrorResponse(err, "USAGE_STATS_ERROR", "failed to get module usage"), false
	}
	return successResponse("Module usage retrieved successfully", map[string]any{
		"org_id": req.OrgID,
		"usage":  usage,
	}), true
}

// handleModuleEvent dispatches inbound reconciliation events by the subject
// segment after the wildcard prefix. The module authority publishes its
// fields at the top level of the JSON body; an enveloped form nesting them
// under "data" is accepted too. Unknown kinds are logged and dropped.
func (s *Server) handleModuleEvent(msg *nats.Msg) {
	kind := msg.Subject
	if idx := strings.LastIndex(kind, "."); idx >= 0 {
		kind = kind[idx+1:]
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		s.logger.WithError(err).WithField("subject", msg.Subject).Warn("Ignoring malformed module event")
		return
	}
	fields := body
	if nested, ok := body["data"].(map[string]any); ok {
		fields = nested
	}
	orgID, _ := fields["org_id"].(string)
	if orgID == "" {
		s.logger.WithField("subject", msg.Subject).Warn("Ignoring module event without org_id")
		return
	}

	ctx := context.Background()
	var err error

	switch kind {
	case "enabled", "disabled":
		moduleKey, _ := fields["module_key"].(string)
		if moduleKey == "" {
			s.logger.WithField("subject", msg.Subject).Warn("Ignoring module event without module_key")
			return
		}
		err = s.syncer.SyncToggle(ctx, orgID, moduleKey, kind == "enabled")
	case "bulk_update":
		err = s.syncer.SyncBulkUpdate(ctx, orgID, stringSlice(fields["enabled_modules"]))
	case "sync_request":
		err = s.syncer.FullSync(ctx, orgID)
	default:
		s.logger.WithField("subject", msg.Subject).Debug("Ignoring unknown module event kind")
		return
	}

	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"subject": msg.Subject,
			"org_id":  orgID,
		}).Error("Failed to process module event")
	}
	if s.metrics != nil {
		s.metrics.SyncEventsTotal.WithLabelValues(kind).Inc()
	}
}

// stringSlice coerces a decoded JSON array into a string slice, dropping
// non-string members.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
