package transport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centerfuze/organization-service/pkg/orgs"
)

func decodeResponse(t *testing.T, payload []byte) *Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(payload, &resp))
	return &resp
}

func TestSuccessResponse(t *testing.T) {
	payload := successResponse("Organization created successfully", map[string]any{"org_id": "org_abc12345"})

	resp := decodeResponse(t, payload)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Organization created successfully", resp.Message)
	assert.Empty(t, resp.ErrorCode)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "org_abc12345", data["org_id"])

	_, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
	assert.NoError(t, err)
}

func TestErrorResponse(t *testing.T) {
	payload := errorResponse("boom", "GET_ORGANIZATION_ERROR", map[string]any{"hint": "x"})

	resp := decodeResponse(t, payload)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "GET_ORGANIZATION_ERROR", resp.ErrorCode)
	assert.Equal(t, "x", resp.Details["hint"])
	assert.Nil(t, resp.Data)
}

func TestDomainErrorResponse_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "not found",
			err:      &orgs.NotFoundError{Resource: "Organization", ID: "org_x"},
			wantCode: CodeNotFound,
		},
		{
			name:     "already exists",
			err:      &orgs.AlreadyExistsError{Resource: "Organization", Field: "name", Value: "acme"},
			wantCode: CodeAlreadyExists,
		},
		{
			name:     "invalid argument",
			err:      &orgs.InvalidArgumentError{Argument: "module_key", Value: "nope"},
			wantCode: CodeInvalidArgument,
		},
		{
			name:     "internal collapses to fallback",
			err:      errors.New("pq: connection refused"),
			wantCode: "CREATE_ORGANIZATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := domainErrorResponse(tt.err, "CREATE_ORGANIZATION_ERROR", "failed to create organization")
			resp := decodeResponse(t, payload)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantCode, resp.ErrorCode)
		})
	}
}

func TestDomainErrorResponse_InternalHidesDetails(t *testing.T) {
	payload := domainErrorResponse(errors.New("pq: password authentication failed"),
		"GET_ORGANIZATION_ERROR", "failed to get organization")

	resp := decodeResponse(t, payload)
	assert.Equal(t, "failed to get organization", resp.Message)
	assert.NotContains(t, resp.Message, "password")
}

func TestDomainErrorResponse_ValidationDetails(t *testing.T) {
	err := &orgs.ValidationError{Fields: map[string]string{
		"name":     "name must be between 2 and 100 characters",
		"owner_id": "owner_id is required",
	}}

	payload := domainErrorResponse(err, "CREATE_ORGANIZATION_ERROR", "failed to create organization")
	resp := decodeResponse(t, payload)

	assert.Equal(t, CodeValidationError, resp.ErrorCode)
	assert.Contains(t, resp.Details, "name")
	assert.Contains(t, resp.Details, "owner_id")
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int64
		hasNext    bool
		hasPrev    bool
	}{
		{name: "middle page", page: 2, limit: 20, total: 45, totalPages: 3, hasNext: true, hasPrev: true},
		{name: "first page", page: 1, limit: 20, total: 45, totalPages: 3, hasNext: true, hasPrev: false},
		{name: "last page", page: 3, limit: 20, total: 45, totalPages: 3, hasNext: false, hasPrev: true},
		{name: "single page", page: 1, limit: 20, total: 10, totalPages: 1, hasNext: false, hasPrev: false},
		{name: "empty result", page: 1, limit: 20, total: 0, totalPages: 0, hasNext: false, hasPrev: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}
