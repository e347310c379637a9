package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/middleware"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/apis"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/gate"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const (
	testKey      = "server-test-key"
	testIssuer   = "fleetmanage"
	testAudience = "fleetmanage-api"
)

type memTenants struct {
	mu      sync.Mutex
	tenants map[tenancy.TenantID]*tenant.Tenant
	users   map[string]*models.User
}

func (m *memTenants) GetTenant(_ context.Context, id tenancy.TenantID) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *memTenants) UpdateTenant(_ context.Context, id tenancy.TenantID, mutate func(*tenant.Tenant) error) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	c := *t
	if err := mutate(&c); err != nil {
		return nil, err
	}
	m.tenants[id] = &c
	out := c
	return &out, nil
}

func (m *memTenants) RegisterTenant(_ context.Context, t *tenant.Tenant, owner *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[owner.Email]; ok {
		return dberror.ErrAlreadyExists
	}
	tc, uc := *t, *owner
	m.tenants[t.ID] = &tc
	m.users[owner.Email] = &uc
	return nil
}

func (m *memTenants) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	c := *u
	return &c, nil
}

type noReference struct{}

func (noReference) ListIndustries(context.Context) ([]models.Industry, error) {
	return []models.Industry{}, nil
}

func (noReference) ListFleetCategories(context.Context, int) ([]models.FleetCategory, error) {
	return []models.FleetCategory{}, nil
}

func (noReference) ListEquipmentTypes(context.Context, int, int) ([]models.EquipmentType, error) {
	return []models.EquipmentType{}, nil
}

type touches struct {
	mu  sync.Mutex
	ids []tenancy.TenantID
}

func (t *touches) Touch(id tenancy.TenantID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, id)
}

func (t *touches) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ids)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	*FleetServer
	tenants *memTenants
	touches *touches
}

func newTestServer(t *testing.T, health Pinger) *testServer {
	t.Helper()
	tenants := &memTenants{tenants: map[tenancy.TenantID]*tenant.Tenant{}, users: map[string]*models.User{}}
	activity := &touches{}
	verifier, err := auth.NewVerifier(testKey, testIssuer, testAudience, time.Now)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(testKey, testIssuer, testAudience, time.Hour)
	require.NoError(t, err)
	m := metrics.New()

	s, err := CreateNewServer(Options{
		API: apis.New(apis.Deps{
			Tenants:   tenants,
			Users:     tenants,
			Reference: noReference{},
			Tokens:    issuer,
		}),
		Verifier: verifier,
		Gate:     gate.New(tenants, activity, gate.WithMetrics(m)),
		Metrics:  m,
		Health:   health,
	})
	require.NoError(t, err)
	s.MountHandlers()
	return &testServer{FleetServer: s, tenants: tenants, touches: activity}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestCreateNewServerNeedsComponents(t *testing.T) {
	_, err := CreateNewServer(Options{})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/version", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, APIVersion, gjson.Get(w.Body.String(), "apiVersion").String())
}

func TestHealth(t *testing.T) {
	w := newTestServer(t, pinger{}).do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = newTestServer(t, pinger{err: errors.New("connection refused")}).do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", gjson.Get(w.Body.String(), "reason").String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/version", "", "")
	w := s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fleet_gate_decisions_total{outcome="public"}`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/equipment", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		req := httptest.NewRequest(http.MethodOptions, "/api/equipment/1", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", method)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"), method)
		assert.Equal(t, method, w.Header().Get("Access-Control-Allow-Methods"), method)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/api/equipment", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", gjson.Get(w.Body.String(), "reason").String())

	w = s.do(http.MethodGet, "/api/equipment", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing_tenant_context", gjson.Get(w.Body.String(), "reason").String())
}

// A tenant signs up, is held at onboarding until billing is in place, then
// completes onboarding and uses the API.
func TestSignupToActiveTenant(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/auth/register",
		`{"companyName":"Acme","fullName":"Jo Doe","email":"ops@acme.test","password":"hunter22!"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := gjson.Get(w.Body.String(), "token").String()
	tid, err := tenancy.ParseTenantID(gjson.Get(w.Body.String(), "tenantId").String())
	require.NoError(t, err)

	w = s.do(http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tid.String(), gjson.Get(w.Body.String(), "tenantId").String())

	w = s.do(http.MethodGet, "/api/tenants/current", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "onboarding_required", gjson.Get(w.Body.String(), "reason").String())

	w = s.do(http.MethodGet, "/api/onboarding/status", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "canMutate").Bool())

	w = s.do(http.MethodPost, "/api/onboarding/complete", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "billing_inactive", gjson.Get(w.Body.String(), "reason").String())

	trialEnd := time.Now().Add(14 * 24 * time.Hour)
	_, err = s.tenants.UpdateTenant(context.Background(), tid, func(t *tenant.Tenant) error {
		t.BillingStatus = tenant.BillingTrialing
		t.TrialEndsAt = &trialEnd
		return nil
	})
	require.NoError(t, err)

	w = s.do(http.MethodPost, "/api/onboarding/complete", "", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", gjson.Get(w.Body.String(), "lifecycle").String())

	before := s.touches.count()
	w = s.do(http.MethodGet, "/api/tenants/current", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme", gjson.Get(w.Body.String(), "name").String())
	assert.Equal(t, before+1, s.touches.count())

	_, err = s.tenants.UpdateTenant(context.Background(), tid, func(t *tenant.Tenant) error {
		return t.Suspend("chargeback", time.Now())
	})
	require.NoError(t, err)
	w = s.do(http.MethodGet, "/api/tenants/current", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "tenant_suspended", gjson.Get(w.Body.String(), "reason").String())
}
