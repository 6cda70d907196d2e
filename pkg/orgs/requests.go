package orgs

import (
	"fmt"
	"regexp"
	"strings"
)

var orgNameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// CreateOrganizationRequest carries the fields for organization creation.
type CreateOrganizationRequest struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Description string            `json:"description,omitempty"`
	OwnerID     string            `json:"owner_id"`
	ParentOrgID string            `json:"parent_org_id,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Website     string            `json:"website,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    CustomMap         `json:"metadata,omitempty"`
}

// Validate checks field constraints and normalizes the name to lowercase.
func (r *CreateOrganizationRequest) Validate() error {
	fields := map[string]string{}

	r.Name = strings.ToLower(r.Name)
	if len(r.Name) < 2 || len(r.Name) > 100 {
		fields["name"] = "name must be between 2 and 100 characters"
	} else if !validOrgName(r.Name) {
		fields["name"] = "name must contain only alphanumeric characters, hyphens, underscores, and dots"
	}
	if len(r.DisplayName) < 2 || len(r.DisplayName) > 200 {
		fields["display_name"] = "display_name must be between 2 and 200 characters"
	}
	if len(r.Description) > 1000 {
		fields["description"] = "description must be at most 1000 characters"
	}
	if r.OwnerID == "" {
		fields["owner_id"] = "owner_id is required"
	}
	if err := r.Metadata.Validate(); err != nil {
		fields["metadata"] = "metadata values must be booleans, numbers, strings, or nested mappings"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validOrgName reports whether name is alphanumeric plus "-_." with at
// least one alphanumeric character.
func validOrgName(name string) bool {
	if !orgNameRe.MatchString(name) {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == '.' {
			return -1
		}
		return r
	}, name)
	return stripped != ""
}

// UpdateOrganizationRequest carries a partial organization update. Only
// fields that are non-nil are applied.
type UpdateOrganizationRequest struct {
	OrgID       string              `json:"org_id"`
	DisplayName *string             `json:"display_name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *OrganizationStatus `json:"status,omitempty"`
	Email       *string             `json:"email,omitempty"`
	Phone       *string             `json:"phone,omitempty"`
	Website     *string             `json:"website,omitempty"`
	Address     *map[string]string  `json:"address,omitempty"`
	Tags        *[]string           `json:"tags,omitempty"`
	Metadata    *CustomMap          `json:"metadata,omitempty"`
}

// Validate checks field constraints on the provided fields only.
func (r *UpdateOrganizationRequest) Validate() error {
	fields := map[string]string{}

	if r.OrgID == "" {
		fields["org_id"] = "org_id is required"
	}
	if r.DisplayName != nil && (len(*r.DisplayName) < 2 || len(*r.DisplayName) > 200) {
		fields["display_name"] = "display_name must be between 2 and 200 characters"
	}
	if r.Description != nil && len(*r.Description) > 1000 {
		fields["description"] = "description must be at most 1000 characters"
	}
	if r.Status != nil && !ValidStatus(*r.Status) {
		fields["status"] = fmt.Sprintf("unknown status %q", *r.Status)
	}
	if r.Metadata != nil {
		if err := r.Metadata.Validate(); err != nil {
			fields["metadata"] = "metadata values must be booleans, numbers, strings, or nested mappings"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Sort fields allowed for ListOrganizationsRequest.SortBy.
var listSortFields = map[string]struct{}{
	"created_at":   {},
	"updated_at":   {},
	"name":         {},
	"display_name": {},
}

// ListOrganizationsRequest carries filtering, sorting and pagination for
// organization listing.
type ListOrganizationsRequest struct {
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
	Status      OrganizationStatus `json:"status,omitempty"`
	OwnerID     string             `json:"owner_id,omitempty"`
	ParentOrgID string             `json:"parent_org_id,omitempty"`
	Search      string             `json:"search,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	SortBy      string             `json:"sort_by,omitempty"`
	SortOrder   string             `json:"sort_order,omitempty"`
}

// Validate applies defaults and checks pagination and sort constraints.
func (r *ListOrganizationsRequest) Validate() error {
	fields := map[string]string{}

	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}

	if r.Page < 1 {
		fields["page"] = "page must be at least 1"
	}
	if r.Limit < 1 || r.Limit > 100 {
		fields["limit"] = "limit must be between 1 and 100"
	}
	if r.Status != "" && !ValidStatus(r.Status) {
		fields["status"] = fmt.Sprintf("unknown status %q", r.Status)
	}
	if _, ok := listSortFields[r.SortBy]; !ok {
		fields["sort_by"] = "sort_by must be one of created_at, updated_at, name, display_name"
	}
	if r.SortOrder != "asc" && r.SortOrder != "desc" {
		fields["sort_order"] = "sort_order must be asc or desc"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UpdateSettingsRequest carries a partial settings update. Each provided
// top-level field replaces the stored value for that field.
type UpdateSettingsRequest struct {
	OrgID           string                `json:"org_id"`
	BillingEmail    *string               `json:"billing_email,omitempty"`
	BillingCycle    *BillingCycle         `json:"billing_cycle,omitempty"`
	PaymentMethodID *string               `json:"payment_method_id,omitempty"`
	TaxID           *string               `json:"tax_id,omitempty"`
	Notifications   *map[string]bool      `json:"notifications,omitempty"`
	Features        *map[string]bool      `json:"features,omitempty"`
	Security        *CustomMap            `json:"security,omitempty"`
	Preferences     *CustomMap            `json:"preferences,omitempty"`
	Integrations    *map[string]CustomMap `json:"integrations,omitempty"`
	CustomSettings  *CustomMap            `json:"custom_settings,omitempty"`
}

// Validate checks field constraints on the provided fields only.
func (r *UpdateSettingsRequest) Validate() error {
	fields := map[string]string{}

	if r.OrgID == "" {
		fields["org_id"] = "org_id is required"
	}
	if r.BillingCycle != nil && !ValidBillingCycle(*r.BillingCycle) {
		fields["billing_cycle"] = fmt.Sprintf("unknown billing cycle %q", *r.BillingCycle)
	}
	for name, m := range map[string]*CustomMap{
		"security":        r.Security,
		"preferences":     r.Preferences,
		"custom_settings": r.CustomSettings,
	} {
		if m != nil {
			if err := m.Validate(); err != nil {
				fields[name] = "values must be booleans, numbers, strings, or nested mappings"
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UpdateLimitsRequest carries a partial limits update. Each provided field
// replaces the stored value for that field.
type UpdateLimitsRequest struct {
	OrgID                 string            `json:"org_id"`
	MaxUsers              *int              `json:"max_users,omitempty"`
	MaxAdminUsers         *int              `json:"max_admin_users,omitempty"`
	MaxStorageBytes       *int64            `json:"max_storage_bytes,omitempty"`
	APICallsPerHour       *int              `json:"api_calls_per_hour,omitempty"`
	APICallsPerDay        *int              `json:"api_calls_per_day,omitempty"`
	MaxProjects           *int              `json:"max_projects,omitempty"`
	MaxIntegrations       *int              `json:"max_integrations,omitempty"`
	MaxWebhooks           *int              `json:"max_webhooks,omitempty"`
	MaxCustomFields       *int              `json:"max_custom_fields,omitempty"`
	MaxWorkflows          *int              `json:"max_workflows,omitempty"`
	MaxReports            *int              `json:"max_reports,omitempty"`
	MonthlyBandwidthBytes *int64            `json:"monthly_bandwidth_bytes,omitempty"`
	MaxFileSizeBytes      *int64            `json:"max_file_size_bytes,omitempty"`
	DataRetentionDays     *int              `json:"data_retention_days,omitempty"`
	BackupRetentionDays   *int              `json:"backup_retention_days,omitempty"`
	CustomLimits          *map[string]int64 `json:"custom_limits,omitempty"`
}

// Validate checks range constraints on the provided fields only.
func (r *UpdateLimitsRequest) Validate() error {
	fields := map[string]string{}

	if r.OrgID == "" {
		fields["org_id"] = "org_id is required"
	}

	atLeastOne := map[string]*int{
		"max_users":       r.MaxUsers,
		"max_admin_users": r.MaxAdminUsers,
	}
	for name, v := range atLeastOne {
		if v != nil && *v < 1 {
			fields[name] = name + " must be at least 1"
		}
	}

	nonNegative := map[string]*int{
		"api_calls_per_hour": r.APICallsPerHour,
		"api_calls_per_day":  r.APICallsPerDay,
		"max_projects":       r.MaxProjects,
		"max_integrations":   r.MaxIntegrations,
		"max_webhooks":       r.MaxWebhooks,
		"max_custom_fields":  r.MaxCustomFields,
		"max_workflows":      r.MaxWorkflows,
		"max_reports":        r.MaxReports,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			fields[name] = name + " must not be negative"
		}
	}

	nonNegative64 := map[string]*int64{
		"max_storage_bytes":       r.MaxStorageBytes,
		"monthly_bandwidth_bytes": r.MonthlyBandwidthBytes,
		"max_file_size_bytes":     r.MaxFileSizeBytes,
	}
	for name, v := range nonNegative64 {
		if v != nil && *v < 0 {
			fields[name] = name + " must not be negative"
		}
	}

	retention := map[string]*int{
		"data_retention_days":   r.DataRetentionDays,
		"backup_retention_days": r.BackupRetentionDays,
	}
	for name, v := range retention {
		if v != nil && *v < 1 {
			fields[name] = name + " must be at least 1"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
