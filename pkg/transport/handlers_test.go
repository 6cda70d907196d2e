package transport

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centerfuze/organization-service/pkg/modules"
	"github.com/centerfuze/organization-service/pkg/observability"
	"github.com/centerfuze/organization-service/pkg/orgs"
)

// fakeOrgService stubs the organization service per test.
type fakeOrgService struct {
	orgs.Service
	createFn func(ctx context.Context, req *orgs.CreateOrganizationRequest) (*orgs.Organization, error)
	getFn    func(ctx context.Context, orgID string) (*orgs.Organization, error)
	listFn   func(ctx context.Context, req *orgs.ListOrganizationsRequest) ([]*orgs.Organization, int64, error)
	deleteFn func(ctx context.Context, orgID string) error
}

func (f *fakeOrgService) Create(ctx context.Context, req *orgs.CreateOrganizationRequest) (*orgs.Organization, error) {
	return f.createFn(ctx, req)
}

func (f *fakeOrgService) Get(ctx context.Context, orgID string) (*orgs.Organization, error) {
	return f.getFn(ctx, orgID)
}

func (f *fakeOrgService) List(ctx context.Context, req *orgs.ListOrganizationsRequest) ([]*orgs.Organization, int64, error) {
	return f.listFn(ctx, req)
}

func (f *fakeOrgService) Delete(ctx context.Context, orgID string) error {
	return f.deleteFn(ctx, orgID)
}

// fakeModuleService stubs the module service per test.
type fakeModuleService struct {
	modules.Service
	toggleFn    func(ctx context.Context, orgID, moduleKey string, enabled bool, actor string) (*modules.ToggleResult, error)
	availableFn func(ctx context.Context) []modules.ModuleInfo
}

func (f *fakeModuleService) Toggle(ctx context.Context, orgID, moduleKey string, enabled bool, actor string) (*modules.ToggleResult, error) {
	return f.toggleFn(ctx, orgID, moduleKey, enabled, actor)
}

func (f *fakeModuleService) Available(ctx context.Context) []modules.ModuleInfo {
	return f.availableFn(ctx)
}

// fakeSyncer records reconciliation calls.
type fakeSyncer struct {
	toggles  []string
	bulks    int
	fulls    []string
	lastArgs map[string]any
}

func (f *fakeSyncer) SyncToggle(_ context.Context, orgID, moduleKey string, enabled bool) error {
	f.toggles = append(f.toggles, moduleKey)
	f.lastArgs = map[string]any{"org_id": orgID, "enabled": enabled}
	return nil
}

func (f *fakeSyncer) SyncBulkUpdate(_ context.Context, orgID string, enabled []string) error {
	f.bulks++
	f.lastArgs = map[string]any{"org_id": orgID, "enabled_modules": enabled}
	return nil
}

func (f *fakeSyncer) FullSync(_ context.Context, orgID string) error {
	f.fulls = append(f.fulls, orgID)
	return nil
}

func newTestServer(orgSvc orgs.Service, moduleSvc modules.Service, syncer ModuleSyncer) *Server {
	return &Server{
		orgs:    orgSvc,
		modules: moduleSvc,
		syncer:  syncer,
		logger:  observability.NewLogger(observability.ErrorLevel, io.Discard),
		prefix:  "centerfuze",
		queue:   "organization-service",
	}
}

func TestHandleCreateOrganization(t *testing.T) {
	orgSvc := &fakeOrgService{
		createFn: func(_ context.Context, req *orgs.CreateOrganizationRequest) (*orgs.Organization, error) {
			assert.Equal(t, "acme", req.Name)
			return &orgs.Organization{OrgID: "org_abc12345", Name: req.Name}, nil
		},
	}
	server := newTestServer(orgSvc, nil, nil)

	payload, ok := server.handleCreateOrganization(context.Background(),
		[]byte(`{"name":"acme","display_name":"Acme Incorporated","owner_id":"user_1"}`))
	require.True(t, ok)

	resp := decodeResponse(t, payload)
	assert.Equal(t, "success", resp.Status)
	data := resp.Data.(map[string]any)
	org := data["organization"].(map[string]any)
	assert.Equal(t, "org_abc12345", org["org_id"])
}

func TestHandleCreateOrganization_MalformedPayload(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	payload, ok := server.handleCreateOrganization(context.Background(), []byte(`{not json`))
	require.False(t, ok)

	resp := decodeResponse(t, payload)
	assert.Equal(t, CodeValidationError, resp.ErrorCode)
}

func TestHandleGetOrganization_NotFound(t *testing.T) {
	orgSvc := &fakeOrgService{
		getFn: func(_ context.Context, orgID string) (*orgs.Organization, error) {
			return nil, &orgs.NotFoundError{Resource: "Organization", ID: orgID}
		},
	}
	server := newTestServer(orgSvc, nil, nil)

	payload, ok := server.handleGetOrganization(context.Background(), []byte(`{"org_id":"org_missing1"}`))
	require.False(t, ok)

	resp := decodeResponse(t, payload)
	assert.Equal(t, CodeNotFound, resp.ErrorCode)
}

func TestHandleListOrganizations_PaginationEnvelope(t *testing.T) {
	orgSvc := &fakeOrgService{
		listFn: func(_ context.Context, req *orgs.ListOrganizationsRequest) ([]*orgs.Organization, int64, error) {
			require.NoError(t, req.Validate())
			return []*orgs.Organization{{OrgID: "org_abc12345"}}, 45, nil
		},
	}
	server := newTestServer(orgSvc, nil, nil)

	payload, ok := server.handleListOrganizations(context.Background(), []byte(`{"page":2,"limit":20}`))
	require.True(t, ok)

	resp := decodeResponse(t, payload)
	data := resp.Data.(map[string]any)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["total_pages"])
	assert.Equal(t, float64(45), pagination["total"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestHandleDeleteOrganization(t *testing.T) {
	var deleted string
	orgSvc := &fakeOrgService{
		deleteFn: func(_ context.Context, orgID string) error {
			deleted = orgID
			return nil
		},
	}
	server := newTestServer(orgSvc, nil, nil)

	payload, ok := server.handleDeleteOrganization(context.Background(), []byte(`{"org_id":"org_abc12345"}`))
	require.True(t, ok)
	assert.Equal(t, "org_abc12345", deleted)

	resp := decodeResponse(t, payload)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "org_abc12345", data["org_id"])
}

func TestHandleToggleModule_PassesActor(t *testing.T) {
	moduleSvc := &fakeModuleService{
		toggleFn: func(_ context.Context, orgID, moduleKey string, enabled bool, actor string) (*modules.ToggleResult, error) {
			assert.Equal(t, "org_abc12345", orgID)
			assert.Equal(t, "clients", moduleKey)
			assert.False(t, enabled)
			assert.Equal(t, "admin_1", actor)
			return &modules.ToggleResult{OrgID: orgID, ModuleKey: moduleKey, Action: "disabled"}, nil
		},
	}
	server := newTestServer(nil, moduleSvc, nil)

	payload, ok := server.handleToggleModule(context.Background(),
		[]byte(`{"org_id":"org_abc12345","module_key":"clients","enabled":false,"updated_by":"admin_1"}`))
	require.True(t, ok)

	resp := decodeResponse(t, payload)
	assert.Equal(t, "Module disabled successfully", resp.Message)
}

func TestHandleToggleModule_UnknownKey(t *testing.T) {
	moduleSvc := &fakeModuleService{
		toggleFn: func(_ context.Context, _, moduleKey string, _ bool, _ string) (*modules.ToggleResult, error) {
			return nil, &orgs.InvalidArgumentError{Argument: "module_key", Value: moduleKey}
		},
	}
	server := newTestServer(nil, moduleSvc, nil)

	payload, ok := server.handleToggleModule(context.Background(),
		[]byte(`{"org_id":"org_abc12345","module_key":"not_a_module","enabled":true}`))
	require.False(t, ok)

	resp := decodeResponse(t, payload)
	assert.Equal(t, CodeInvalidArgument, resp.ErrorCode)
}

func TestHandleAvailableModules(t *testing.T) {
	moduleSvc := &fakeModuleService{
		availableFn: func(_ context.Context) []modules.ModuleInfo {
			return modules.DefaultCatalog().Modules()
		},
	}
	server := newTestServer(nil, moduleSvc, nil)

	payload, ok := server.handleAvailableModules(context.Background(), nil)
	require.True(t, ok)

	resp := decodeResponse(t, payload)
	data := resp.Data.(map[string]any)
	list := data["modules"].([]any)
	assert.Len(t, list, 16)
}

func moduleEventMsg(subject string, data map[string]any) *nats.Msg {
	payload, _ := json.Marshal(map[string]any{"data": data})
	return &nats.Msg{Subject: subject, Data: payload}
}

func TestHandleModuleEvent_ToggleDispatch(t *testing.T) {
	syncer := &fakeSyncer{}
	server := newTestServer(nil, nil, syncer)

	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.enabled", map[string]any{
		"org_id":     "org_abc12345",
		"module_key": "clients",
	}))

	require.Equal(t, []string{"clients"}, syncer.toggles)
	assert.Equal(t, true, syncer.lastArgs["enabled"])

	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.disabled", map[string]any{
		"org_id":     "org_abc12345",
		"module_key": "reports",
	}))
	require.Len(t, syncer.toggles, 2)
	assert.Equal(t, false, syncer.lastArgs["enabled"])
}

func TestHandleModuleEvent_BulkDispatch(t *testing.T) {
	syncer := &fakeSyncer{}
	server := newTestServer(nil, nil, syncer)

	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.bulk_update", map[string]any{
		"org_id":          "org_abc12345",
		"enabled_modules": []string{"dashboard", "reports"},
	}))

	assert.Equal(t, 1, syncer.bulks)
	assert.Equal(t, []string{"dashboard", "reports"}, syncer.lastArgs["enabled_modules"])
}

func TestHandleModuleEvent_FlatPayloadDispatch(t *testing.T) {
	syncer := &fakeSyncer{}
	server := newTestServer(nil, nil, syncer)

	// The module authority publishes its fields at the top level, with no
	// "data" wrapper.
	flat, err := json.Marshal(map[string]any{
		"org_id":     "org_abc12345",
		"module_key": "clients",
	})
	require.NoError(t, err)
	server.handleModuleEvent(&nats.Msg{Subject: "centerfuze.admin.module.enabled", Data: flat})

	require.Equal(t, []string{"clients"}, syncer.toggles)
	assert.Equal(t, true, syncer.lastArgs["enabled"])

	flat, err = json.Marshal(map[string]any{
		"org_id":          "org_abc12345",
		"enabled_modules": []string{"dashboard"},
	})
	require.NoError(t, err)
	server.handleModuleEvent(&nats.Msg{Subject: "centerfuze.admin.module.bulk_update", Data: flat})

	assert.Equal(t, 1, syncer.bulks)
	assert.Equal(t, []string{"dashboard"}, syncer.lastArgs["enabled_modules"])
}

func TestHandleModuleEvent_SyncRequestDispatch(t *testing.T) {
	syncer := &fakeSyncer{}
	server := newTestServer(nil, nil, syncer)

	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.sync_request", map[string]any{
		"org_id": "org_abc12345",
	}))

	assert.Equal(t, []string{"org_abc12345"}, syncer.fulls)
}

func TestHandleModuleEvent_IgnoresBadInput(t *testing.T) {
	syncer := &fakeSyncer{}
	server := newTestServer(nil, nil, syncer)

	// Malformed JSON, missing org_id, and unknown kinds are all dropped.
	server.handleModuleEvent(&nats.Msg{Subject: "centerfuze.admin.module.enabled", Data: []byte(`{bad`)})
	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.enabled", map[string]any{}))
	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.enabled", map[string]any{
		"org_id": "org_abc12345",
	}))
	server.handleModuleEvent(moduleEventMsg("centerfuze.admin.module.repainted", map[string]any{
		"org_id": "org_abc12345",
	}))

	assert.Empty(t, syncer.toggles)
	assert.Zero(t, syncer.bulks)
	assert.Empty(t, syncer.fulls)
}
