package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("tenant not found")
	ErrDuplicateTenant = errors.New("tenant name or domain already exists")
	ErrMissingFields   = errors.New("name and domain are required")
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Input carries tenant fields for create and update. Industry "Other"
// must come with IndustryOther filled in; the stored value is the
// free-text override.
type Input struct {
	Name             string
	Domain           string
	Industry         string
	IndustryOther    string
	SubscriptionTier string
	CompanyWebsite   string
	BillingStreet    string
	BillingCity      string
	BillingState     string
	BillingZip       string
	BillingCountry   string
	BillingPhone     string
	MFAEnabled       bool
	AllowedMFA       []string
	IsActive         bool
}

func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))
	in.Industry = strings.TrimSpace(in.Industry)
	in.IndustryOther = strings.TrimSpace(in.IndustryOther)
	in.SubscriptionTier = strings.TrimSpace(in.SubscriptionTier)
	in.CompanyWebsite = strings.TrimSpace(in.CompanyWebsite)
	in.BillingStreet = strings.TrimSpace(in.BillingStreet)
	in.BillingCity = strings.TrimSpace(in.BillingCity)
	in.BillingState = strings.TrimSpace(in.BillingState)
	in.BillingZip = strings.TrimSpace(in.BillingZip)
	in.BillingCountry = strings.TrimSpace(in.BillingCountry)
	in.BillingPhone = strings.TrimSpace(in.BillingPhone)
}

func (in *Input) industry() string {
	if in.Industry == "Other" && in.IndustryOther != "" {
		return in.IndustryOther
	}
	return in.Industry
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Tenant, error) {
	in.normalize()
	if in.Name == "" || in.Domain == "" {
		return nil, ErrMissingFields
	}

	if err := s.checkDuplicate(ctx, in.Name, in.Domain, uuid.Nil); err != nil {
		return nil, err
	}

	t := models.Tenant{
		Name:             in.Name,
		Domain:           in.Domain,
		Industry:         in.industry(),
		SubscriptionTier: in.SubscriptionTier,
		CompanyWebsite:   in.CompanyWebsite,
		BillingStreet:    in.BillingStreet,
		BillingCity:      in.BillingCity,
		BillingState:     in.BillingState,
		BillingZip:       in.BillingZip,
		BillingCountry:   in.BillingCountry,
		BillingPhone:     in.BillingPhone,
		MFAEnabled:       in.MFAEnabled,
		AllowedMFA:       in.AllowedMFA,
		IsActive:         in.IsActive,
	}

	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTenant
		}
		return nil, err
	}

	s.logger.Info("tenant created", "tenant_id", t.ID, "domain", t.Domain)
	return &t, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Tenant, error) {
	in.normalize()
	if in.Name == "" || in.Domain == "" {
		return nil, ErrMissingFields
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(ctx, in.Name, in.Domain, id); err != nil {
		return nil, err
	}

	t.Name = in.Name
	t.Domain = in.Domain
	t.Industry = in.industry()
	t.SubscriptionTier = in.SubscriptionTier
	t.CompanyWebsite = in.CompanyWebsite
	t.BillingStreet = in.BillingStreet
	t.BillingCity = in.BillingCity
	t.BillingState = in.BillingState
	t.BillingZip = in.BillingZip
	t.BillingCountry = in.BillingCountry
	t.BillingPhone = in.BillingPhone
	t.MFAEnabled = in.MFAEnabled
	t.AllowedMFA = in.AllowedMFA
	t.IsActive = in.IsActive

	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTenant
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	normalizeLogo(&t)
	return &t, nil
}

// GetByDomain looks a tenant up by its email-suffix domain.
func (s *Service) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.WithContext(ctx).
		Where("domain = ?", strings.ToLower(strings.TrimSpace(domain))).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	normalizeLogo(&t)
	return &t, nil
}

// List returns all tenants, optionally restricted to active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Tenant, error) {
	query := s.db.WithContext(ctx).Model(&models.Tenant{}).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var tenants []models.Tenant
	if err := query.Find(&tenants).Error; err != nil {
		return nil, err
	}
	for i := range tenants {
		normalizeLogo(&tenants[i])
	}
	return tenants, nil
}

// SetLogoURL attaches an uploaded logo to an existing tenant. The logo
// upload can only follow Create since it needs the assigned id.
func (s *Service) SetLogoURL(ctx context.Context, id uuid.UUID, url string) (*models.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.LogoURL = url
	if err := s.db.WithContext(ctx).Model(t).Update("logo_url", url).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// SetTheme stores the theme picked during onboarding.
func (s *Service) SetTheme(ctx context.Context, id uuid.UUID, theme string) error {
	return s.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("theme", theme).Error
}

func (s *Service) checkDuplicate(ctx context.Context, name, domain string, exclude uuid.UUID) error {
	query := s.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("name = ? OR domain = ?", name, domain)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateTenant
	}
	return nil
}

// normalizeLogo clears placeholder logo URLs so clients fall back to
// initials instead of rendering a dead placeholder image.
func normalizeLogo(t *models.Tenant) {
	if strings.Contains(t.LogoURL, "placeholder") {
		t.LogoURL = ""
	}
}

// isUniqueViolation classifies DB-level unique index failures that slip
// past the pre-check under concurrent writes.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
