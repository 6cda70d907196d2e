package orgs

import (
	"time"
)

// OrganizationStatus represents organization lifecycle status
type OrganizationStatus string

const (
	StatusActive    OrganizationStatus = "active"
	StatusInactive  OrganizationStatus = "inactive"
	StatusSuspended OrganizationStatus = "suspended"
	StatusPending   OrganizationStatus = "pending"
)

// ValidStatus reports whether s is a known organization status.
func ValidStatus(s OrganizationStatus) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

// BillingCycle represents the settings billing cycle
type BillingCycle string

const (
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingAnnual    BillingCycle = "annual"
)

// ValidBillingCycle reports whether c is a known billing cycle.
func ValidBillingCycle(c BillingCycle) bool {
	switch c {
	case BillingMonthly, BillingQuarterly, BillingAnnual:
		return true
	}
	return false
}

// CustomMap is an open string-keyed mapping whose values are restricted to
// booleans, numbers, strings, or nested mappings of the same shape. It is
// the extensibility point for metadata, security options, preferences and
// custom settings.
type CustomMap map[string]any

// Validate checks that every value in the map is a bool, number, string,
// nil, a list of such values, or a nested mapping of the same shape.
func (m CustomMap) Validate() error {
	for key, value := range m {
		if !validCustomValue(value) {
			return &ValidationError{Fields: map[string]string{
				key: "value must be a boolean, number, string, list, or nested mapping",
			}}
		}
	}
	return nil
}

func validCustomValue(v any) bool {
	switch val := v.(type) {
	case nil, bool, string, float64, int, int64:
		return true
	case []any:
		for _, item := range val {
			if !validCustomValue(item) {
				return false
			}
		}
		return true
	case map[string]any:
		return CustomMap(val).Validate() == nil
	case CustomMap:
		return val.Validate() == nil
	}
	return false
}

// Organization is the primary tenant entity.
type Organization struct {
	OrgID       string             `json:"org_id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description,omitempty"`
	Status      OrganizationStatus `json:"status"`
	OwnerID     string             `json:"owner_id"`
	ParentOrgID string             `json:"parent_org_id,omitempty"`

	// Contact information
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`

	Address  map[string]string `json:"address,omitempty"`
	Tags     []string          `json:"tags"`
	Metadata CustomMap         `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationSettings is the per-organization configurable options bundle,
// one-to-one with Organization via OrgID.
type OrganizationSettings struct {
	OrgID string `json:"org_id"`

	// Billing
	BillingEmail    string       `json:"billing_email,omitempty"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	PaymentMethodID string       `json:"payment_method_id,omitempty"`
	TaxID           string       `json:"tax_id,omitempty"`

	Notifications map[string]bool      `json:"notifications"`
	Features      map[string]bool      `json:"features"`
	Security      CustomMap            `json:"security"`
	Preferences   CustomMap            `json:"preferences"`
	Integrations  map[string]CustomMap `json:"integrations"`
	CustomSettings CustomMap           `json:"custom_settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationLimits is the per-organization numeric quota bundle,
// one-to-one with Organization via OrgID. The service stores these values
// but does not enforce them.
type OrganizationLimits struct {
	OrgID string `json:"org_id"`

	MaxUsers      int `json:"max_users"`
	MaxAdminUsers int `json:"max_admin_users"`

	MaxStorageBytes int64 `json:"max_storage_bytes"`

	APICallsPerHour int `json:"api_calls_per_hour"`
	APICallsPerDay  int `json:"api_calls_per_day"`

	MaxProjects     int `json:"max_projects"`
	MaxIntegrations int `json:"max_integrations"`
	MaxWebhooks     int `json:"max_webhooks"`

	MaxCustomFields int `json:"max_custom_fields"`
	MaxWorkflows    int `json:"max_workflows"`
	MaxReports      int `json:"max_reports"`

	MonthlyBandwidthBytes int64 `json:"monthly_bandwidth_bytes"`
	MaxFileSizeBytes      int64 `json:"max_file_size_bytes"`

	DataRetentionDays   int `json:"data_retention_days"`
	BackupRetentionDays int `json:"backup_retention_days"`

	CustomLimits map[string]int64 `json:"custom_limits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings returns the fixed default settings bundle for an
// organization. This is the only place the bundle is constructed.
func DefaultSettings(orgID string, now time.Time) *OrganizationSettings {
	return &OrganizationSettings{
		OrgID:        orgID,
		BillingCycle: BillingMonthly,
		Notifications: map[string]bool{
			"billing_alerts":  true,
			"usage_alerts":    true,
			"security_alerts": true,
			"system_updates":  true,
		},
		Features: map[string]bool{
			"api_access":          true,
			"advanced_analytics":  false,
			"custom_integrations": false,
			"priority_support":    false,
		},
		Security: CustomMap{
			"require_2fa":     false,
			"session_timeout": 3600,
			"allowed_domains": []any{},
			"ip_whitelist":    []any{},
		},
		Preferences: CustomMap{
			"theme":       "light",
			"timezone":    "UTC",
			"date_format": "YYYY-MM-DD",
			"language":    "en",
		},
		Integrations:   map[string]CustomMap{},
		CustomSettings: CustomMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DefaultLimits returns the fixed default quota bundle for an organization.
// This is the only place the bundle is constructed.
func DefaultLimits(orgID string, now time.Time) *OrganizationLimits {
	return &OrganizationLimits{
		OrgID:                 orgID,
		MaxUsers:              100,
		MaxAdminUsers:         10,
		MaxStorageBytes:       10 * 1024 * 1024 * 1024, // 10GB
		APICallsPerHour:       1000,
		APICallsPerDay:        10000,
		MaxProjects:           50,
		MaxIntegrations:       10,
		MaxWebhooks:           20,
		MaxCustomFields:       100,
		MaxWorkflows:          25,
		MaxReports:            50,
		MonthlyBandwidthBytes: 100 * 1024 * 1024 * 1024, // 100GB
		MaxFileSizeBytes:      100 * 1024 * 1024,        // 100MB
		DataRetentionDays:     365,
		BackupRetentionDays:   90,
		CustomLimits:          map[string]int64{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
