package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hravenhq/hraven/internal/api/handlers"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	authService := auth.NewService(tc.DB, tc.JWTService)
	handler := handlers.NewAuthHandler(authService)

	r := chi.NewRouter()
	r.Post("/auth/login", handler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Get("/api/me", handler.Me)
	})

	return r, tc
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupAuthRouter(t)
	defer tc.Cleanup()

	t.Run("valid credentials", func(t *testing.T) {
		body := map[string]string{
			"email":    tc.User.Email,
			"password": "testpassword123!",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp auth.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, tc.User.Email, resp.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    tc.User.Email,
			"password": "not-the-password",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		body := map[string]string{
			"email":    "ghost@nowhere.example",
			"password": "whatever123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, tc.DB, tc.Tenant)
		require.NoError(t, tc.DB.Model(inactive).Update("is_active", false).Error)

		body := map[string]string{
			"email":    inactive.Email,
			"password": "testpassword123!",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", map[string]string{"email": tc.User.Email})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	router, tc := setupAuthRouter(t)
	defer tc.Cleanup()

	req := testutil.AuthenticatedRequest(t, "GET", "/api/me", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var user models.User
	testutil.ParseJSONResponse(t, rr, &user)
	assert.Equal(t, tc.User.ID, user.ID)
	assert.NotNil(t, user.Tenant)
	assert.NotNil(t, user.Role)
}
