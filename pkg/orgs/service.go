package orgs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/centerfuze/organization-service/pkg/events"
	"github.com/centerfuze/organization-service/pkg/observability"
)

// Service defines the interface for organization lifecycle, settings, and
// limits management.
type Service interface {
	// Organization lifecycle
	Create(ctx context.Context, req *CreateOrganizationRequest) (*Organization, error)
	Get(ctx context.Context, orgID string) (*Organization, error)
	Update(ctx context.Context, req *UpdateOrganizationRequest) (*Organization, error)
	Delete(ctx context.Context, orgID string) error
	List(ctx context.Context, req *ListOrganizationsRequest) ([]*Organization, int64, error)
	Search(ctx context.Context, term string, limit int) ([]*Organization, error)

	// Settings management
	GetSettings(ctx context.Context, orgID string) (*OrganizationSettings, error)
	UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*OrganizationSettings, error)

	// Limits management
	GetLimits(ctx context.Context, orgID string) (*OrganizationLimits, error)
	UpdateLimits(ctx context.Context, req *UpdateLimitsRequest) (*OrganizationLimits, error)
}

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db     *sql.DB
	events events.Publisher
	logger *observability.Logger
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB, publisher events.Publisher, logger *observability.Logger) *PostgresService {
	return &PostgresService{
		db:     db,
		events: publisher,
		logger: logger,
	}
}

const orgColumns = `org_id, name, display_name, description, status, owner_id, parent_org_id,
       email, phone, website, address, tags, metadata, created_at, updated_at`

// newOrgID generates a fresh opaque organization identifier.
func newOrgID() string {
	return "org_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Create creates a new organization together with its default settings and
// limits records. The three writes are independent: if a later write fails
// the earlier records remain, and the missing ones are materialized on next
// read.
func (s *PostgresService) Create(ctx context.Context, req *CreateOrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE name = $1)`, req.Name,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization name: %w", err)
	}
	if exists {
		return nil, &AlreadyExistsError{Resource: "Organization", Field: "name", Value: req.Name}
	}

	now := time.Now().UTC()
	org := &Organization{
		OrgID:       newOrgID(),
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Status:      StatusActive,
		OwnerID:     req.OwnerID,
		ParentOrgID: req.ParentOrgID,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if org.Tags == nil {
		org.Tags = []string{}
	}
	if org.Metadata == nil {
		org.Metadata = CustomMap{}
	}

	addressJSON, err := json.Marshal(org.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal address: %w", err)
	}
	metadataJSON, err := json.Marshal(org.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO organizations (org_id, name, display_name, description, status, owner_id, parent_org_id,
		                           email, phone, website, address, tags, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		org.OrgID, org.Name, org.DisplayName, org.Description, org.Status, org.OwnerID, org.ParentOrgID,
		org.Email, org.Phone, org.Website, addressJSON, pq.Array(org.Tags), metadataJSON,
		org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, &AlreadyExistsError{Resource: "Organization", Field: "name", Value: req.Name}
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	// Materialize default settings and limits. Failures here are not rolled
	// back; the read path recreates missing records.
	if err := s.insertDefaultSettings(ctx, org.OrgID, now); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	if err := s.insertDefaultLimits(ctx, org.OrgID, now); err != nil {
		return nil, fmt.Errorf("failed to create default limits: %w", err)
	}

	s.events.Publish(ctx, "organization.created", map[string]any{
		"org_id":       org.OrgID,
		"name":         org.Name,
		"display_name": org.DisplayName,
		"owner_id":     org.OwnerID,
	}, nil)

	s.logger.WithField("org_id", org.OrgID).Info("Created organization")
	return org, nil
}

// Get retrieves an organization by its org_id
func (s *PostgresService) Get(ctx context.Context, orgID string) (*Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE org_id = $1`, orgID)

	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "Organization", ID: orgID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// Update applies only the fields explicitly present in the request and
// always refreshes updated_at.
func (s *PostgresService) Update(ctx context.Context, req *UpdateOrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
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

	if req.DisplayName != nil {
		addClause("display_name", *req.DisplayName)
	}
	if req.Description != nil {
		addClause("description", *req.Description)
	}
	if req.Status != nil {
		addClause("status", *req.Status)
	}
	if req.Email != nil {
		addClause("email", *req.Email)
	}
	if req.Phone != nil {
		addClause("phone", *req.Phone)
	}
	if req.Website != nil {
		addClause("website", *req.Website)
	}
	if req.Address != nil {
		addressJSON, err := json.Marshal(*req.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal address: %w", err)
		}
		addClause("address", addressJSON)
	}
	if req.Tags != nil {
		addClause("tags", pq.Array(*req.Tags))
	}
	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(*req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		addClause("metadata", metadataJSON)
	}

	args = append(args, req.OrgID)
	query := fmt.Sprintf("UPDATE organizations SET %s WHERE org_id = $%d",
		strings.Join(setClauses, ", "), argPos)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, &NotFoundError{Resource: "Organization", ID: req.OrgID}
	}

	org, err := s.Get(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, "organization.updated", map[string]any{
		"org_id":         req.OrgID,
		"updated_fields": updatedFields,
	}, nil)

	s.logger.WithField("org_id", req.OrgID).Info("Updated organization")
	return org, nil
}

// Delete removes the organization and its settings and limits records.
// Usage ledger entries are retained. The three deletes are independent
// single-row writes.
func (s *PostgresService) Delete(ctx context.Context, orgID string) error {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM organizations WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM organization_settings WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete organization settings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM organization_limits WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete organization limits: %w", err)
	}

	s.events.Publish(ctx, "organization.deleted", map[string]any{
		"org_id": orgID,
		"name":   org.Name,
	}, nil)

	s.logger.WithField("org_id", orgID).Info("Deleted organization")
	return nil
}

// List returns a page of organizations matching the request filters along
// with the total match count.
func (s *PostgresService) List(ctx context.Context, req *ListOrganizationsRequest) ([]*Organization, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	whereClauses := []string{}
	args := []interface{}{}
	argPos := 1

	addFilter := func(clause string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(clause, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Status != "" {
		addFilter("status = $%d", req.Status)
	}
	if req.OwnerID != "" {
		addFilter("owner_id = $%d", req.OwnerID)
	}
	if req.ParentOrgID != "" {
		addFilter("parent_org_id = $%d", req.ParentOrgID)
	}
	if len(req.Tags) > 0 {
		addFilter("tags && $%d", pq.Array(req.Tags))
	}
	if req.Search != "" {
		whereClauses = append(whereClauses,
			fmt.Sprintf("(name ILIKE '%%' || $%d || '%%' OR display_name ILIKE '%%' || $%d || '%%')", argPos, argPos))
		args = append(args, req.Search)
		argPos++
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM organizations"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	order := "DESC"
	if req.SortOrder == "asc" {
		order = "ASC"
	}
	// SortBy is restricted to the allow-list by Validate.
	query := fmt.Sprintf("SELECT %s FROM organizations%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		orgColumns, where, req.SortBy, order, argPos, argPos+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var organizations []*Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan organization: %w", err)
		}
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return organizations, total, nil
}

// Search performs a case-insensitive substring match over name and
// display_name, capped at limit.
func (s *PostgresService) Search(ctx context.Context, term string, limit int) ([]*Organization, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orgColumns+` FROM organizations
		 WHERE name ILIKE '%' || $1 || '%' OR display_name ILIKE '%' || $1 || '%'
		 LIMIT $2`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search organizations: %w", err)
	}
	defer rows.Close()

	var organizations []*Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return organizations, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOrganization scans a single organization row
func scanOrganization(row rowScanner) (*Organization, error) {
	org := &Organization{}
	var addressJSON, metadataJSON []byte
	var tags pq.StringArray

	err := row.Scan(
		&org.OrgID, &org.Name, &org.DisplayName, &org.Description, &org.Status,
		&org.OwnerID, &org.ParentOrgID, &org.Email, &org.Phone, &org.Website,
		&addressJSON, &tags, &metadataJSON, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	org.Tags = []string(tags)
	if org.Tags == nil {
		org.Tags = []string{}
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &org.Address); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}
	org.Metadata = CustomMap{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &org.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return org, nil
}
