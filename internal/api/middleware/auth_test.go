package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", time.Hour)
}

func claimsEcho(t *testing.T, gotUserID *uuid.UUID, gotTenantID *uuid.UUID, gotRole *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = GetUserID(r.Context())
		*gotTenantID = GetTenantID(r.Context())
		*gotRole = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	jwtService := testJWTService()
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := jwtService.GenerateToken(userID, tenantID, "admin@acme.com", models.RoleAdmin)
	require.NoError(t, err)

	t.Run("bearer token loads claims into context", func(t *testing.T) {
		var gotUser, gotTenant uuid.UUID
		var gotRole string
		handler := Auth(jwtService)(claimsEcho(t, &gotUser, &gotTenant, &gotRole))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, tenantID, gotTenant)
		assert.Equal(t, models.RoleAdmin, gotRole)
	})

	t.Run("X-Auth-Token fallback", func(t *testing.T) {
		var gotUser, gotTenant uuid.UUID
		var gotRole string
		handler := Auth(jwtService)(claimsEcho(t, &gotUser, &gotTenant, &gotRole))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("X-Auth-Token", token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run without a token")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run with an invalid token")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("superadmin token carries a zero tenant id", func(t *testing.T) {
		superToken, err := jwtService.GenerateToken(userID, uuid.Nil, "root@hraven.io", models.RoleSuperAdmin)
		require.NoError(t, err)

		var gotUser, gotTenant uuid.UUID
		var gotRole string
		handler := Auth(jwtService)(claimsEcho(t, &gotUser, &gotTenant, &gotRole))

		req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
		req.Header.Set("Authorization", "Bearer "+superToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, uuid.Nil, gotTenant)
		assert.Equal(t, models.RoleSuperAdmin, gotRole)
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := testJWTService()

	newRequest := func(role string) *http.Request {
		token, err := jwtService.GenerateToken(uuid.New(), uuid.New(), "user@acme.com", role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(jwtService)(RequireRole(models.RoleSuperAdmin)(ok))

	t.Run("allowed role passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newRequest(models.RoleSuperAdmin))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newRequest(models.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
