package orgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestValidate_NormalizesName(t *testing.T) {
	req := &CreateOrganizationRequest{
		Name:        "Acme-1",
		DisplayName: "Acme Incorporated",
		OwnerID:     "user_1",
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "acme-1", req.Name)
}

func TestCreateRequestValidate_NameRules(t *testing.T) {
	tests := []struct {
		name    string
		orgName string
		wantErr bool
	}{
		{name: "simple", orgName: "acme", wantErr: false},
		{name: "dots and dashes", orgName: "acme.prod-1_x", wantErr: false},
		{name: "too short", orgName: "a", wantErr: true},
		{name: "spaces", orgName: "acme corp", wantErr: true},
		{name: "special chars", orgName: "acme!", wantErr: true},
		{name: "punctuation only", orgName: "---", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreateOrganizationRequest{
				Name:        tt.orgName,
				DisplayName: "Acme Incorporated",
				OwnerID:     "user_1",
			}
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateRequestValidate_RequiredFields(t *testing.T) {
	req := &CreateOrganizationRequest{Name: "acme"}
	err := req.Validate()
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "display_name")
	assert.Contains(t, validationErr.Fields, "owner_id")
}

func TestCreateRequestValidate_MetadataValues(t *testing.T) {
	req := &CreateOrganizationRequest{
		Name:        "acme",
		DisplayName: "Acme Incorporated",
		OwnerID:     "user_1",
		Metadata: CustomMap{
			"tier":   "gold",
			"seats":  50,
			"nested": map[string]any{"region": "us-east"},
		},
	}
	assert.NoError(t, req.Validate())

	req.Metadata = CustomMap{"bad": struct{}{}}
	err := req.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestListRequestValidate_Defaults(t *testing.T) {
	req := &ListOrganizationsRequest{}
	require.NoError(t, req.Validate())

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, "created_at", req.SortBy)
	assert.Equal(t, "desc", req.SortOrder)
}

func TestListRequestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		req     ListOrganizationsRequest
		wantErr bool
	}{
		{name: "limit at cap", req: ListOrganizationsRequest{Limit: 100}, wantErr: false},
		{name: "limit above cap", req: ListOrganizationsRequest{Limit: 101}, wantErr: true},
		{name: "negative page", req: ListOrganizationsRequest{Page: -1}, wantErr: true},
		{name: "unknown sort field", req: ListOrganizationsRequest{SortBy: "owner_id"}, wantErr: true},
		{name: "unknown sort order", req: ListOrganizationsRequest{SortOrder: "sideways"}, wantErr: true},
		{name: "unknown status", req: ListOrganizationsRequest{Status: "zombie"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateRequestValidate(t *testing.T) {
	shortName := "x"
	badStatus := OrganizationStatus("zombie")

	req := &UpdateOrganizationRequest{OrgID: "org_abc12345", DisplayName: &shortName}
	assert.Error(t, req.Validate())

	req = &UpdateOrganizationRequest{OrgID: "org_abc12345", Status: &badStatus}
	assert.Error(t, req.Validate())

	req = &UpdateOrganizationRequest{Status: &badStatus}
	err := req.Validate()
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "org_id")

	goodStatus := StatusInactive
	req = &UpdateOrganizationRequest{OrgID: "org_abc12345", Status: &goodStatus}
	assert.NoError(t, req.Validate())
}
