package modules

import "time"

// OrganizationSummary is the slim organization view embedded in module
// responses.
type OrganizationSummary struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}

// ModuleState is a catalog entry together with its enabled flag for one
// organization.
type ModuleState struct {
	ModuleInfo
	Enabled bool `json:"enabled"`
}

// ModuleList is the full entitlement view for one organization.
type ModuleList struct {
	Organization   OrganizationSummary `json:"organization"`
	Modules        []ModuleState       `json:"modules"`
	EnabledModules []string            `json:"enabled_modules"`
}

// ToggleResult describes the outcome of a single module toggle.
type ToggleResult struct {
	OrgID          string   `json:"org_id"`
	ModuleKey      string   `json:"module_key"`
	Enabled        bool     `json:"enabled"`
	Action         string   `json:"action"` // "enabled" or "disabled"
	EnabledModules []string `json:"enabled_modules"`
}

// BulkUpdateResult describes the outcome of a bulk entitlement replacement.
type BulkUpdateResult struct {
	OrgID          string   `json:"org_id"`
	EnabledModules []string `json:"enabled_modules"`
	Added          []string `json:"modules_added"`
	Removed        []string `json:"modules_removed"`
}

// ModuleUsage aggregates the usage ledger for one module.
type ModuleUsage struct {
	ModuleKey        string     `json:"module_key"`
	TotalActions     int64      `json:"total_actions"`
	LastUsed         *time.Time `json:"last_used,omitempty"`
	UniqueUsersCount int64      `json:"unique_users_count"`
}

// UsageSummary aggregates recent activity across all modules of an
// organization.
type UsageSummary struct {
	TotalActions30d    int64 `json:"total_actions_30d"`
	ActiveModulesCount int64 `json:"active_modules_count"`
	ActiveUsersCount   int64 `json:"active_users_count"`
}

// ModuleStatus is the entitlement view plus recent usage, used by
// monitoring consumers.
type ModuleStatus struct {
	Organization   OrganizationSummary `json:"organization"`
	Modules        []ModuleState       `json:"modules"`
	EnabledModules []string            `json:"enabled_modules"`
	Usage          UsageSummary        `json:"usage_summary"`
	Timestamp      time.Time           `json:"timestamp"`
}
