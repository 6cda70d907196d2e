package transport

import (
	"context"
	"encoding/json"

	"github.com/centerfuze/organization-service/pkg/orgs"
)

// orgIDRequest is the payload for subjects keyed by organization only.
type orgIDRequest struct {
	OrgID string `json:"org_id"`
}

// searchRequest is the payload for organization.search.
type searchRequest struct {
	SearchTerm string `json:"search_term"`
	Limit      int    `json:"limit"`
}

// Pagination describes the page window of a list reply.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
	}
}

func invalidPayloadResponse() ([]byte, bool) {
	return errorResponse("invalid request payload", CodeValidationError, nil), false
}

func (s *Server) handleCreateOrganization(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgs.CreateOrganizationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	org, err := s.orgs.Create(ctx, &req)
	if err != nil {
		return domainErrorResponse(err, "CREATE_ORGANIZATION_ERROR", "failed to create organization"), false
	}
	return successResponse("Organization created successfully", map[string]any{"organization": org}), true
}

func (s *Server) handleGetOrganization(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	org, err := s.orgs.Get(ctx, req.OrgID)
	if err != nil {
		return domainErrorResponse(err, "GET_ORGANIZATION_ERROR", "failed to get organization"), false
	}
	return successResponse("Organization retrieved successfully", map[string]any{"organization": org}), true
}

func (s *Server) handleUpdateOrganization(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgs.UpdateOrganizationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	org, err := s.orgs.Update(ctx, &req)
	if err != nil {
		return domainErrorResponse(err, "UPDATE_ORGANIZATION_ERROR", "failed to update organization"), false
	}
	return successResponse("Organization updated successfully", map[string]any{"organization": org}), true
}

func (s *Server) handleDeleteOrganization(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	if err := s.orgs.Delete(ctx, req.OrgID); err != nil {
		return domainErrorResponse(err, "DELETE_ORGANIZATION_ERROR", "failed to delete organization"), false
	}
	return successResponse("Organization deleted successfully", map[string]any{"org_id": req.OrgID}), true
}

func (s *Server) handleListOrganizations(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgs.ListOrganizationsRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return invalidPayloadResponse()
		}
	}

	organizations, total, err := s.orgs.List(ctx, &req)
	if err != nil {
		return domainErrorResponse(err, "LIST_ORGANIZATIONS_ERROR", "failed to list organizations"), false
	}
	if organizations == nil {
		organizations = []*orgs.Organization{}
	}
	return successResponse("Organizations retrieved successfully", map[string]any{
		"organizations": organizations,
		"pagination":    newPagination(req.Page, req.Limit, total),
	}), true
}

func (s *Server) handleSearchOrganizations(ctx context.Context, data []byte) ([]byte, bool) {
	var req searchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	organizations, err := s.orgs.Search(ctx, req.SearchTerm, req.Limit)
	if err != nil {
		return domainErrorResponse(err, "SEARCH_ORGANIZATIONS_ERROR", "failed to search organizations"), false
	}
	if organizations == nil {
		organizations = []*orgs.Organization{}
	}
	return successResponse("Organizations retrieved successfully", map[string]any{
		"organizations": organizations,
		"count":         len(organizations),
	}), true
}

func (s *Server) handleGetSettings(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	settings, err := s.orgs.GetSettings(ctx, req.OrgID)
	if err != nil {
		return domainErrorResponse(err, "GET_SETTINGS_ERROR", "failed to get organization settings"), false
	}
	return successResponse("Settings retrieved successfully", map[string]any{"settings": settings}), true
}

func (s *Server) handleUpdateSettings(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgs.UpdateSettingsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	settings, err := s.orgs.UpdateSettings(ctx, &req)
	if err != nil {
		return domainErrorResponse(err, "UPDATE_SETTINGS_ERROR", "failed to update organization settings"), false
	}
	return successResponse("Settings updated successfully", map[string]any{"settings": settings}), true
}

func (s *Server) handleGetLimits(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	limits, err := s.orgs.GetLimits(ctx, req.OrgID)
	if err != nil {
		return domainErrorResponse(err, "GET_LIMITS_ERROR", "failed to get organization limits"), false
	}
	return successResponse("Limits retrieved successfully", map[string]any{"limits": limits}), true
}

func (s *Server) handleUpdateLimits(ctx context.Context, data []byte) ([]byte, bool) {
	var req orgs.UpdateLimitsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return invalidPayloadResponse()
	}

	limits, err := s.orgs.UpdateLimits(ctx, &req)
	if err != nil {
		return domainErrorResponse(err, "UPDATE_LIMITS_ERROR", "failed to update organization limits"), false
	}
	return successResponse("Limits updated successfully", map[string]any{"limits": limits}), true
}
