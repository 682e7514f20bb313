package tenant_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/tenant"
	"github.com/hravenhq/hraven/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *tenant.Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return tenant.NewService(db, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func validInput() tenant.Input {
	return tenant.Input{
		Name:             "Acme Corp",
		Domain:           "acme.com",
		Industry:         "Technology",
		SubscriptionTier: "Pro",
		CompanyWebsite:   "https://www.acme.com",
		BillingStreet:    "1 Main St",
		BillingCity:      "Richmond",
		BillingState:     "Virginia",
		BillingZip:       "23220",
		BillingCountry:   "US",
		BillingPhone:     "555-0100",
		MFAEnabled:       true,
		AllowedMFA:       []string{"EMAIL", "TOTP"},
		IsActive:         true,
	}
}

func TestService_Create(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID, "create must return the assigned id")
	assert.Equal(t, "acme.com", created.Domain)
	assert.True(t, created.MFAEnabled)
	assert.ElementsMatch(t, []string{"EMAIL", "TOTP"}, []string(created.AllowedMFA))
}

func TestService_Create_TrimsFields(t *testing.T) {
	svc := newService(t)

	in := validInput()
	in.Name = "  Acme Corp  "
	in.Domain = "  ACME.com "
	in.BillingCity = " Richmond "

	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", created.Name)
	assert.Equal(t, "acme.com", created.Domain)
	assert.Equal(t, "Richmond", created.BillingCity)
}

func TestService_Create_IndustryOther(t *testing.T) {
	svc := newService(t)

	in := validInput()
	in.Industry = "Other"
	in.IndustryOther = "Space Logistics"

	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Space Logistics", created.Industry)
}

func TestService_Create_Duplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	t.Run("duplicate name", func(t *testing.T) {
		in := validInput()
		in.Domain = "other.com"
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, tenant.ErrDuplicateTenant)
	})

	t.Run("duplicate domain", func(t *testing.T) {
		in := validInput()
		in.Name = "Other Corp"
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, tenant.ErrDuplicateTenant)
	})
}

func TestService_Create_MissingFields(t *testing.T) {
	svc := newService(t)

	in := validInput()
	in.Domain = "   "
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, tenant.ErrMissingFields)
}

func TestService_Update(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Acme Holdings"
	in.IsActive = false

	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.Name)
	assert.False(t, updated.IsActive)
}

func TestService_Update_DuplicateOther(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	other := validInput()
	other.Name = "Globex"
	other.Domain = "globex.com"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	// Renaming the first tenant onto the second must conflict.
	in := validInput()
	in.Name = "Globex"
	_, err = svc.Update(ctx, first.ID, in)
	assert.ErrorIs(t, err, tenant.ErrDuplicateTenant)

	// Updating a tenant without changing name/domain must not conflict
	// with itself.
	_, err = svc.Update(ctx, first.ID, validInput())
	assert.NoError(t, err)
}

func TestService_GetByDomain(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	found, err := svc.GetByDomain(ctx, " ACME.COM ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByDomain(ctx, "nope.com")
	assert.ErrorIs(t, err, tenant.ErrNotFound)
}

func TestService_List_ActiveOnly(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	inactive := validInput()
	inactive.Name = "Globex"
	inactive.Domain = "globex.com"
	inactive.IsActive = false
	_, err = svc.Create(ctx, inactive)
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Acme Corp", active[0].Name)
}

func TestService_SetLogoURL(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	updated, err := svc.SetLogoURL(ctx, created.ID, "/uploads/"+created.ID.String()+"/logo/logo_1.png")
	require.NoError(t, err)
	assert.Contains(t, updated.LogoURL, "/logo/logo_1.png")
}

func TestService_PlaceholderLogoCleared(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.SetLogoURL(ctx, created.ID, "https://via.placeholder.com/150")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LogoURL, "placeholder logos fall back to initials")
}
