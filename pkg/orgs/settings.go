package orgs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const settingsColumns = `org_id, billing_email, billing_cycle, payment_method_id, tax_id,
       notifications, features, security, preferences, integrations, custom_settings,
       created_at, updated_at`

// GetSettings returns the settings record for an organization, materializing
// the defaults if the record does not exist yet.
func (s *PostgresService) GetSettings(ctx context.Context, orgID string) (*OrganizationSettings, error) {
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, err
	}

	settings, err := s.selectSettings(ctx, orgID)
	if err == sql.ErrNoRows {
		if err := s.insertDefaultSettings(ctx, orgID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to materialize default settings: %w", err)
		}
		settings, err = s.selectSettings(ctx, orgID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies only the fields explicitly present in the request.
// A missing settings record is materialized with defaults first, so the
// operation never reports NotFound for an existing organization.
func (s *PostgresService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*OrganizationSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, req.OrgID); err != nil {
		return nil, err
	}
	if err := s.insertDefaultSettings(ctx, req.OrgID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to materialize default settings: %w", err)
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
	addJSONClause := func(column string, value interface{}) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", column, err)
		}
		addClause(column, data)
		return nil
	}

	if req.BillingEmail != nil {
		addClause("billing_email", *req.BillingEmail)
	}
	if req.BillingCycle != nil {
		addClause("billing_cycle", *req.BillingCycle)
	}
	if req.PaymentMethodID != nil {
		addClause("payment_method_id", *req.PaymentMethodID)
	}
	if req.TaxID != nil {
		addClause("tax_id", *req.TaxID)
	}
	if req.Notifications != nil {
		if err := addJSONClause("notifications", *req.Notifications); err != nil {
			return nil, err
		}
	}
	if req.Features != nil {
		if err := addJSONClause("features", *req.Features); err != nil {
			return nil, err
		}
	}
	if req.Security != nil {
		if err := addJSONClause("security", *req.Security); err != nil {
			return nil, err
		}
	}
	if req.Preferences != nil {
		if err := addJSONClause("preferences", *req.Preferences); err != nil {
			return nil, err
		}
	}
	if req.Integrations != nil {
		if err := addJSONClause("integrations", *req.Integrations); err != nil {
			return nil, err
		}
	}
	if req.CustomSettings != nil {
		if err := addJSONClause("custom_settings", *req.CustomSettings); err != nil {
			return nil, err
		}
	}

	args = append(args, req.OrgID)
	query := fmt.Sprintf("UPDATE organization_settings SET %s WHERE org_id = $%d",
		strings.Join(setClauses, ", "), argPos)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update organization settings: %w", err)
	}

	settings, err := s.selectSettings(ctx, req.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization settings: %w", err)
	}

	s.events.Publish(ctx, "organization.settings.updated", map[string]any{
		"org_id":         req.OrgID,
		"updated_fields": updatedFields,
	}, nil)

	s.logger.WithField("org_id", req.OrgID).Info("Updated organization settings")
	return settings, nil
}

// insertDefaultSettings writes the default settings bundle for an
// organization. An existing record is left untouched.
func (s *PostgresService) insertDefaultSettings(ctx context.Context, orgID string, now time.Time) error {
	defaults := DefaultSettings(orgID, now)

	notifications, err := json.Marshal(defaults.Notifications)
	if err != nil {
		return err
	}
	features, err := json.Marshal(defaults.Features)
	if err != nil {
		return err
	}
	security, err := json.Marshal(defaults.Security)
	if err != nil {
		return err
	}
	preferences, err := json.Marshal(defaults.Preferences)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO organization_settings (org_id, billing_email, billing_cycle, payment_method_id, tax_id,
		                                   notifications, features, security, preferences, integrations,
		                                   custom_settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '{}', '{}', $10, $11)
		ON CONFLICT (org_id) DO NOTHING`,
		defaults.OrgID, defaults.BillingEmail, defaults.BillingCycle, defaults.PaymentMethodID, defaults.TaxID,
		notifications, features, security, preferences,
		defaults.CreatedAt, defaults.UpdatedAt,
	)
	return err
}

func (s *PostgresService) selectSettings(ctx context.Context, orgID string) (*OrganizationSettings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM organization_settings WHERE org_id = $1`, orgID)

	settings := &OrganizationSettings{}
	var notifications, features, security, preferences, integrations, customSettings []byte

	err := row.Scan(
		&settings.OrgID, &settings.BillingEmail, &settings.BillingCycle,
		&settings.PaymentMethodID, &settings.TaxID,
		&notifications, &features, &security, &preferences, &integrations, &customSettings,
		&settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		data []byte
		dest interface{}
	}{
		{notifications, &settings.Notifications},
		{features, &settings.Features},
		{security, &settings.Security},
		{preferences, &settings.Preferences},
		{integrations, &settings.Integrations},
		{customSettings, &settings.CustomSettings},
	} {
		if len(col.data) > 0 {
			if err := json.Unmarshal(col.data, col.dest); err != nil {
				return nil, fmt.Errorf("failed to unmarshal settings column: %w", err)
			}
		}
	}
	if settings.Integrations == nil {
		settings.Integrations = map[string]CustomMap{}
	}
	if settings.CustomSettings == nil {
		settings.CustomSettings = CustomMap{}
	}

	return settings, nil
}
