package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hravenhq/hraven/internal/api/handlers"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTenantRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	svc := newServices(t, tc)

	handler := handlers.NewTenantHandler(svc.Tenants)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Get("/api/tenants", handler.List)
		r.Post("/api/tenants", handler.Create)
		r.Get("/api/tenants/current", handler.Current)
		r.Get("/api/tenants/{id}", handler.Get)
		r.Put("/api/tenants/{id}", handler.Update)
	})

	return r, tc
}

func TestTenantHandler_Create(t *testing.T) {
	router, tc := setupTenantRouter(t)
	defer tc.Cleanup()

	t.Run("creates a tenant", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "Globex",
			"domain":   "globex.example",
			"industry": "Energy",
			"isActive": true,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/tenants", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var tn models.Tenant
		testutil.ParseJSONResponse(t, rr, &tn)
		assert.Equal(t, "Globex", tn.Name)
		assert.Equal(t, "globex.example", tn.Domain)
	})

	t.Run("industry Other stores the free-text override", func(t *testing.T) {
		body := map[string]interface{}{
			"name":          "Hooli",
			"domain":        "hooli.example",
			"industry":      "Other",
			"industryOther": "Compression",
			"isActive":      true,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/tenants", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var tn models.Tenant
		testutil.ParseJSONResponse(t, rr, &tn)
		assert.Equal(t, "Compression", tn.Industry)
	})

	t.Run("duplicate name or domain", func(t *testing.T) {
		body := map[string]interface{}{
			"name":   "Globex",
			"domain": "globex2.example",
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/tenants", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/tenants", map[string]string{"name": "NoDomain"}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/tenants", map[string]string{"name": "X", "domain": "x.example"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTenantHandler_GetAndList(t *testing.T) {
	router, tc := setupTenantRouter(t)
	defer tc.Cleanup()

	t.Run("get by id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants/"+tc.Tenant.ID.String(), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var tn models.Tenant
		testutil.ParseJSONResponse(t, rr, &tn)
		assert.Equal(t, tc.Tenant.ID, tn.ID)
	})

	t.Run("current resolves the caller's tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants/current", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var tn models.Tenant
		testutil.ParseJSONResponse(t, rr, &tn)
		assert.Equal(t, tc.Tenant.ID, tn.ID)
	})

	t.Run("current for a superadmin has no tenant", func(t *testing.T) {
		super := testutil.CreateTestSuperAdmin(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, super)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants/current", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants/00000000-0000-0000-0000-000000000001", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("list returns all tenants", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var tenants []models.Tenant
		testutil.ParseJSONResponse(t, rr, &tenants)
		assert.NotEmpty(t, tenants)
	})
}

func TestTenantHandler_Update(t *testing.T) {
	router, tc := setupTenantRouter(t)
	defer tc.Cleanup()

	body := map[string]interface{}{
		"name":             tc.Tenant.Name,
		"domain":           tc.Tenant.Domain,
		"industry":         "Finance",
		"subscriptionTier": "Pro",
		"isActive":         true,
	}

	req := testutil.AuthenticatedRequest(t, "PUT", "/api/tenants/"+tc.Tenant.ID.String(), body, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tn models.Tenant
	testutil.ParseJSONResponse(t, rr, &tn)
	assert.Equal(t, "Finance", tn.Industry)
	assert.Equal(t, "Pro", tn.SubscriptionTier)
}
