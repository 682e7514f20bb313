package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/role"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with migrations and
// the built-in global roles applied.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.Role{},
		&models.User{},
		&models.OTPChallenge{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := role.Seed(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	return db
}

// CreateTestTenant creates a tenant with a unique name and domain.
func CreateTestTenant(t *testing.T, db *gorm.DB) *models.Tenant {
	t.Helper()

	suffix := uuid.New().String()[:8]
	tenant := &models.Tenant{
		Base:             models.Base{ID: uuid.New()},
		Name:             "Acme " + suffix,
		Domain:           suffix + ".acme.com",
		Industry:         "Technology",
		SubscriptionTier: "Free",
		IsActive:         true,
	}

	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to create test tenant: %v", err)
	}

	return tenant
}

// GlobalRole fetches one of the seeded global roles by name.
func GlobalRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	var r models.Role
	if err := db.Where("name = ? AND tenant_id IS NULL", name).First(&r).Error; err != nil {
		t.Fatalf("failed to fetch global role %s: %v", name, err)
	}
	return &r
}

// CreateTestUser creates an active tenant admin under the given tenant.
func CreateTestUser(t *testing.T, db *gorm.DB, tenant *models.Tenant) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	adminRole := GlobalRole(t, db, models.RoleAdmin)

	user := &models.User{
		Base:          models.Base{ID: uuid.New()},
		TenantID:      &tenant.ID,
		FirstName:     "Test",
		LastName:      "User",
		Email:         "test-" + uuid.New().String()[:8] + "@" + tenant.Domain,
		PasswordHash:  hash,
		RoleID:        adminRole.ID,
		IsActive:      true,
		IsTenantAdmin: true,
		EmailVerified: true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Tenant = tenant
	user.Role = adminRole
	return user
}

// CreateTestSuperAdmin creates a tenant-less SuperAdmin user.
func CreateTestSuperAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	superRole := GlobalRole(t, db, models.RoleSuperAdmin)

	user := &models.User{
		Base:          models.Base{ID: uuid.New()},
		FirstName:     "Root",
		LastName:      "Admin",
		Email:         "root-" + uuid.New().String()[:8] + "@hraven.io",
		PasswordHash:  hash,
		RoleID:        superRole.ID,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test superadmin: %v", err)
	}

	user.Role = superRole
	return user
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	tenantID := uuid.Nil
	if user.TenantID != nil {
		tenantID = *user.TenantID
	}
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	token, err := jwtService.GenerateToken(user.ID, tenantID, user.Email, roleName)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds the common test dependencies.
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Tenant     *models.Tenant
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, tenant, admin
// user, and token.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	tenant := CreateTestTenant(t, db)
	user := CreateTestUser(t, db, tenant)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Tenant:     tenant,
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database.
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
