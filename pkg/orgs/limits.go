package orgs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const limitsColumns = `org_id, max_users, max_admin_users, max_storage_bytes,
       api_calls_per_hour, api_calls_per_day, max_projects, max_integrations, max_webhooks,
       max_custom_fields, max_workflows, max_reports, monthly_bandwidth_bytes, max_file_size_bytes,
       data_retention_days, backup_retention_days, custom_limits, created_at, updated_at`

// GetLimits returns the quota record for an organization, materializing the
// defaults if the record does not exist yet.
func (s *PostgresService) GetLimits(ctx context.Context, orgID string) (*OrganizationLimits, error) {
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, err
	}

	limits, err := s.selectLimits(ctx, orgID)
	if err == sql.ErrNoRows {
		if err := s.insertDefaultLimits(ctx, orgID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to materialize default limits: %w", err)
		}
		limits, err = s.selectLimits(ctx, orgID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization limits: %w", err)
	}
	return limits, nil
}

// UpdateLimits applies only the fields explicitly present in the request.
// A missing limits record is materialized with defaults first, so the
// operation never reports NotFound for an existing organization.
func (s *PostgresService) UpdateLimits(ctx context.Context, req *UpdateLimitsRequest) (*OrganizationLimits, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, req.OrgID); err != nil {
		return nil, err
	}
	if err := s.insertDefaultLimits(ctx, req.OrgID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to materialize default limits: %w", err)
	}

	setClauses := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	updatedFields := []string{"updated_at"}
	argPos := 2

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		updatedFields = append(updatedFields, column)
		argPos++
	}

	if req.MaxUsers != nil {
		addClause("max_users", *req.MaxUsers)
	}
	if req.MaxAdminUsers != nil {
		addClause("max_admin_users", *req.MaxAdminUsers)
	}
	if req.MaxStorageBytes != nil {
		addClause("max_storage_bytes", *req.MaxStorageBytes)
	}
	if req.APICallsPerHour != nil {
		addClause("api_calls_per_hour", *req.APICallsPerHour)
	}
	if req.APICallsPerDay != nil {
		addClause("api_calls_per_day", *req.APICallsPerDay)
	}
	if req.MaxProjects != nil {
		addClause("max_projects", *req.MaxProjects)
	}
	if req.MaxIntegrations != nil {
		addClause("max_integrations", *req.MaxIntegrations)
	}
	if req.MaxWebhooks != nil {
		addClause("max_webhooks", *req.MaxWebhooks)
	}
	if req.MaxCustomFields != nil {
		addClause("max_custom_fields", *req.MaxCustomFields)
	}
	if req.MaxWorkflows != nil {
		addClause("max_workflows", *req.MaxWorkflows)
	}
	if req.MaxReports != nil {
		addClause("max_reports", *req.MaxReports)
	}
	if req.MonthlyBandwidthBytes != nil {
		addClause("monthly_bandwidth_bytes", *req.MonthlyBandwidthBytes)
	}
	if req.MaxFileSizeBytes != nil {
		addClause("max_file_size_bytes", *req.MaxFileSizeBytes)
	}
	if req.DataRetentionDays != nil {
		addClause("data_retention_days", *req.DataRetentionDays)
	}
	if req.BackupRetentionDays != nil {
		addClause("backup_retention_days", *req.BackupRetentionDays)
	}
	if req.CustomLimits != nil {
		data, err := json.Marshal(*req.CustomLimits)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal custom_limits: %w", err)
		}
		addClause("custom_limits", data)
	}

	args = append(args, req.OrgID)
	query := fmt.Sprintf("UPDATE organization_limits SET %s WHERE org_id = $%d",
		strings.Join(setClauses, ", "), argPos)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update organization limits: %w", err)
	}

	limits, err := s.selectLimits(ctx, req.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization limits: %w", err)
	}

	s.events.Publish(ctx, "organization.limits.updated", map[string]any{
		"org_id":         req.OrgID,
		"updated_fields": updatedFields,
	}, nil)

	s.logger.WithField("org_id", req.OrgID).Info("Updated organization limits")
	return limits, nil
}

// insertDefaultLimits writes the default quota bundle for an organization.
// An existing record is left untouched.
func (s *PostgresService) insertDefaultLimits(ctx context.Context, orgID string, now time.Time) error {
	defaults := DefaultLimits(orgID, now)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organization_limits (org_id, max_users, max_admin_users, max_storage_bytes,
		                                 api_calls_per_hour, api_calls_per_day, max_projects,
		                                 max_integrations, max_webhooks, max_custom_fields,
		                                 max_workflows, max_reports, monthly_bandwidth_bytes,
		                                 max_file_size_bytes, data_retention_days, backup_retention_days,
		                                 custom_limits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, '{}', $17, $18)
		ON CONFLICT (org_id) DO NOTHING`,
		defaults.OrgID, defaults.MaxUsers, defaults.MaxAdminUsers, defaults.MaxStorageBytes,
		defaults.APICallsPerHour, defaults.APICallsPerDay, defaults.MaxProjects,
		defaults.MaxIntegrations, defaults.MaxWebhooks, defaults.MaxCustomFields,
		defaults.MaxWorkflows, defaults.MaxReports, defaults.MonthlyBandwidthBytes,
		defaults.MaxFileSizeBytes, defaults.DataRetentionDays, defaults.BackupRetentionDays,
		defaults.CreatedAt, defaults.UpdatedAt,
	)
	return err
}

func (s *PostgresService) selectLimits(ctx context.Context, orgID string) (*OrganizationLimits, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+limitsColumns+` FROM organization_limits WHERE org_id = $1`, orgID)

	limits := &OrganizationLimits{}
	var customLimits []byte

	err := row.Scan(
		&limits.OrgID, &limits.MaxUsers, &limits.MaxAdminUsers, &limits.MaxStorageBytes,
		&limits.APICallsPerHour, &limits.APICallsPerDay, &limits.MaxProjects,
		&limits.MaxIntegrations, &limits.MaxWebhooks, &limits.MaxCustomFields,
		&limits.MaxWorkflows, &limits.MaxReports, &limits.MonthlyBandwidthBytes,
		&limits.MaxFileSizeBytes, &limits.DataRetentionDays, &limits.BackupRetentionDays,
		&customLimits, &limits.CreatedAt, &limits.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	limits.CustomLimits = map[string]int64{}
	if len(customLimits) > 0 {
		if err := json.Unmarshal(customLimits, &limits.CustomLimits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom_limits: %w", err)
		}
	}

	return limits, nil
}
