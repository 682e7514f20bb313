package onboarding_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/onboarding"
	"github.com/hravenhq/hraven/internal/provisioning"
	"github.com/hravenhq/hraven/internal/role"
	"github.com/hravenhq/hraven/internal/tenant"
	"github.com/hravenhq/hraven/internal/testutil"
	"github.com/hravenhq/hraven/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOnboarding(t *testing.T) (*onboarding.Service, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	encryptor, err := crypto.NewEncryptor("")
	require.NoError(t, err)

	tenants := tenant.NewService(db, logger)
	users := provisioning.NewService(db, tenants, role.NewService(db), encryptor, nil, logger, 10*time.Minute)

	svc := onboarding.NewService(onboarding.NewMemoryStore(), users, tenants, nil, logger)
	return svc, db
}

func TestService_SaveAndResume_RoundTrip(t *testing.T) {
	svc, db := newOnboarding(t)
	ctx := context.Background()

	tn := testutil.CreateTestTenant(t, db)
	user := testutil.CreateTestUser(t, db, tn)

	w := onboarding.New()
	w.Draft = completeDraft()
	w.Draft.AdminEmails = []string{"a@acme.com", "b@acme.com"}
	w, err := w.Next()
	require.NoError(t, err)

	require.NoError(t, svc.SaveProgress(ctx, user.ID, w))

	// Simulated reload: Resume must return the identical pair.
	restored, err := svc.Resume(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, w, restored)
}

func TestService_Resume_PrefillsFromRegistration(t *testing.T) {
	svc, db := newOnboarding(t)
	ctx := context.Background()

	tn := testutil.CreateTestTenant(t, db)
	user := testutil.CreateTestUser(t, db, tn)
	require.NoError(t, db.Model(user).Update("company", "Acme Corp").Error)

	w, err := svc.Resume(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepSystemSettings, w.Step)
	assert.Equal(t, "Acme Corp", w.Draft.CompanyName)
	assert.Equal(t, "https://www."+tn.Domain, w.Draft.CompanyWebsite)
}

func TestService_Resume_SavedProgressOverridesPrefill(t *testing.T) {
	svc, db := newOnboarding(t)
	ctx := context.Background()

	tn := testutil.CreateTestTenant(t, db)
	user := testutil.CreateTestUser(t, db, tn)

	w := onboarding.New()
	w.Draft = completeDraft()
	w.Draft.CompanyName = "Renamed Inc"
	require.NoError(t, svc.SaveProgress(ctx, user.ID, w))

	restored, err := svc.Resume(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Inc", restored.Draft.CompanyName)
}

func TestService_SaveProgress_Rejections(t *testing.T) {
	svc, db := newOnboarding(t)
	ctx := context.Background()

	tn := testutil.CreateTestTenant(t, db)
	user := testutil.CreateTestUser(t, db, tn)

	bad := onboarding.New()
	bad.Step = onboarding.Step(9)
	assert.ErrorIs(t, svc.SaveProgress(ctx, user.ID, bad), onboarding.ErrInvalidStep)

	theme := onboarding.New()
	theme.Draft.Theme = "solarized"
	assert.ErrorIs(t, svc.SaveProgress(ctx, user.ID, theme), onboarding.ErrInvalidTheme)
}

func TestService_Finish(t *testing.T) {
	svc, db := newOnboarding(t)
	ctx := context.Background()

	tn := testutil.CreateTestTenant(t, db)
	user := testutil.CreateTestUser(t, db, tn)

	w := onboarding.New()
	w.Draft = completeDraft()
	w.Draft.Theme = "dark"
	w.Draft.LogoURL = "/uploads/" + tn.ID.String() + "/logo/logo_1.png"
	require.NoError(t, svc.SaveProgress(ctx, user.ID, w))

	require.NoError(t, svc.Finish(ctx, user.ID, w))

	// User is onboarded.
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, got.OnboardingCompleted)

	// Draft was applied to the tenant.
	var gotTenant models.Tenant
	require.NoError(t, db.First(&gotTenant, tn.ID).Error)
	assert.Equal(t, "dark", gotTenant.Theme)
	assert.Contains(t, gotTenant.LogoURL, "/logo/logo_1.png")

	// Progress cleared; resume starts over with prefill.
	restored, err := svc.Resume(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepSystemSettings, restored.Step)

	assert.ErrorIs(t, svc.Finish(ctx, uuid.New(), w), provisioning.ErrUserNotFound)
}
