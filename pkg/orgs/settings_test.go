package orgs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsColumnsList() []string {
	return []string{
		"org_id", "billing_email", "billing_cycle", "payment_method_id", "tax_id",
		"notifications", "features", "security", "preferences", "integrations", "custom_settings",
		"created_at", "updated_at",
	}
}

func defaultSettingsRow(orgID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(settingsColumnsList()).AddRow(
		orgID, "", "monthly", "", "",
		[]byte(`{"billing_alerts":true,"usage_alerts":true,"security_alerts":true,"system_updates":true}`),
		[]byte(`{"api_access":true,"advanced_analytics":false,"custom_integrations":false,"priority_support":false}`),
		[]byte(`{"require_2fa":false,"session_timeout":3600,"allowed_domains":[],"ip_whitelist":[]}`),
		[]byte(`{"theme":"light","timezone":"UTC","date_format":"YYYY-MM-DD","language":"en"}`),
		[]byte(`{}`), []byte(`{}`), now, now,
	)
}

func TestGetSettings_MaterializesDefaults(t *testing.T) {
	service, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM organizations WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(orgRow("org_abc12345", "acme"))
	mock.ExpectQuery("SELECT (.+) FROM organization_settings WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(sqlmock.NewRows(settingsColumnsList()))
	mock.ExpectExec("INSERT INTO organization_settings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM organization_settings WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(defaultSettingsRow("org_abc12345"))

	settings, err := service.GetSettings(context.Background(), "org_abc12345")
	require.NoError(t, err)

	assert.Equal(t, BillingMonthly, settings.BillingCycle)
	assert.True(t, settings.Notifications["billing_alerts"])
	assert.True(t, settings.Features["api_access"])
	assert.False(t, settings.Features["advanced_analytics"])
	assert.Equal(t, "light", settings.Preferences["theme"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSettings_ExistingRecordNotReinserted(t *testing.T) {
	service, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM organizations WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(orgRow("org_abc12345", "acme"))
	mock.ExpectQuery("SELECT (.+) FROM organization_settings WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(defaultSettingsRow("org_abc12345"))

	settings, err := service.GetSettings(context.Background(), "org_abc12345")
	require.NoError(t, err)
	assert.Equal(t, "org_abc12345", settings.OrgID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSettings_DeletedOrganization(t *testing.T) {
	service, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM organizations WHERE org_id").
		WithArgs("org_gone1234").
		WillReturnRows(sqlmock.NewRows(orgColumnsList()))

	_, err := service.GetSettings(context.Background(), "org_gone1234")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettings_PartialFields(t *testing.T) {
	service, mock, pub := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM organizations WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(orgRow("org_abc12345", "acme"))
	mock.ExpectExec("INSERT INTO organization_settings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE organization_settings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM organization_settings WHERE org_id").
		WithArgs("org_abc12345").
		WillReturnRows(defaultSettingsRow("org_abc12345"))

	billingEmail := "billing@acme.example"
	cycle := BillingAnnual
	_, err := service.UpdateSettings(context.Background(), &UpdateSettingsRequest{
		OrgID:        "org_abc12345",
		BillingEmail: &billingEmail,
		BillingCycle: &cycle,
	})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "organization.settings.updated", pub.events[0].eventType)
	fields, ok := pub.events[0].data["updated_fields"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"updated_at", "billing_email", "billing_cycle"}, fields)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettings_InvalidBillingCycle(t *testing.T) {
	service, _, pub := newTestService(t)

	cycle := BillingCycle("weekly")
	_, err := service.UpdateSettings(context.Background(), &UpdateSettingsRequest{
		OrgID:        "org_abc12345",
		BillingCycle: &cycle,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, pub.events)
}
