package role

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("role not found")
	ErrDuplicateRole = errors.New("role already exists")
	ErrMissingName   = errors.New("role name is required")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns all global roles plus, when tenantID is non-nil, the
// roles scoped to that tenant.
func (s *Service) List(ctx context.Context, tenantID *uuid.UUID) ([]models.Role, error) {
	query := s.db.WithContext(ctx).Model(&models.Role{}).Order("name ASC")
	if tenantID != nil {
		query = query.Where("tenant_id IS NULL OR tenant_id = ?", *tenantID)
	}

	var roles []models.Role
	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetByName resolves a role by name within a tenant scope; global roles
// match regardless of scope.
func (s *Service) GetByName(ctx context.Context, name string, tenantID *uuid.UUID) (*models.Role, error) {
	query := s.db.WithContext(ctx).Where("name = ?", name)
	if tenantID == nil {
		query = query.Where("tenant_id IS NULL")
	} else {
		query = query.Where("tenant_id IS NULL OR tenant_id = ?", *tenantID)
	}

	var r models.Role
	if err := query.Order("tenant_id DESC").First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Create adds a tenant-scoped role. Global roles are created by Seed
// only.
func (s *Service) Create(ctx context.Context, name string, tenantID uuid.UUID) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Where("name = ? AND (tenant_id IS NULL OR tenant_id = ?)", name, tenantID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateRole
	}

	r := models.Role{Name: name, TenantID: &tenantID}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}

	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Name = name
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// Seed installs the built-in global roles. Idempotent.
func Seed(db *gorm.DB) error {
	for _, name := range []string{models.RoleSuperAdmin, models.RoleAdmin} {
		var count int64
		if err := db.Model(&models.Role{}).
			Where("name = ? AND tenant_id IS NULL", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Role{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
