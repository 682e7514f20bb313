package provisioning

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/role"
	"github.com/hravenhq/hraven/internal/tasks"
	"github.com/hravenhq/hraven/internal/tenant"
	"github.com/hravenhq/hraven/pkg/crypto"
	"github.com/hravenhq/hraven/pkg/password"
	"gorm.io/gorm"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrRoleNotFound   = errors.New("role not found")
	ErrMissingTenant  = errors.New("tenant id is required")
	ErrMissingEmail   = errors.New("email is required")
	ErrInvalidOTP     = errors.New("invalid verification code")
	ErrOTPExpired     = errors.New("verification code has expired")
	ErrNoChallenge    = errors.New("no active verification code")
)

// Service drives the user lifecycle: self-service registration with
// OTP verification, and the admin-managed create/update/toggle path.
type Service struct {
	db        *gorm.DB
	tenants   *tenant.Service
	roles     *role.Service
	encryptor *crypto.Encryptor
	queue     *asynq.Client // nil when Redis is unavailable; mail is skipped
	logger    *slog.Logger
	otpExpiry time.Duration

	now func() time.Time
}

func NewService(db *gorm.DB, tenants *tenant.Service, roles *role.Service, encryptor *crypto.Encryptor, queue *asynq.Client, logger *slog.Logger, otpExpiry time.Duration) *Service {
	if otpExpiry <= 0 {
		otpExpiry = 10 * time.Minute
	}
	return &Service{
		db:        db,
		tenants:   tenants,
		roles:     roles,
		encryptor: encryptor,
		queue:     queue,
		logger:    logger,
		otpExpiry: otpExpiry,
		now:       time.Now,
	}
}

// Register handles self-service signup: validates the intake, derives
// the tenant domain from the email suffix, creates the tenant record if
// the domain is new, creates the tenant-admin user, and issues an OTP.
// The returned user is in the OTP-pending state.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	domain := DeriveDomain(email)

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	adminRole, err := s.roles.GetByName(ctx, models.RoleAdmin, nil)
	if err != nil {
		return nil, err
	}

	// Registered users get a random password; they set their own after
	// verifying the OTP.
	initial, err := password.Generate(password.DefaultLength)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(initial)
	if err != nil {
		return nil, err
	}

	tn, err := s.tenants.GetByDomain(ctx, domain)
	if errors.Is(err, tenant.ErrNotFound) {
		industry := in.Industry
		if industry == "" {
			industry = "others"
		}
		tn, err = s.tenants.Create(ctx, tenant.Input{
			Name:     strings.TrimSpace(in.Company),
			Domain:   domain,
			Industry: industry,
			IsActive: true,
		})
	}
	if err != nil {
		return nil, err
	}

	user := models.User{
		TenantID:      &tn.ID,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         email,
		PasswordHash:  hash,
		RoleID:        adminRole.ID,
		Company:       strings.TrimSpace(in.Company),
		Country:       strings.TrimSpace(in.Country),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		EmployeeCount: strings.TrimSpace(in.EmployeeCount),
		IsActive:      true,
		IsTenantAdmin: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	if err := s.IssueOTP(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "domain", domain)
	return &user, nil
}

// IssueOTP creates or replaces the user's single active challenge and
// queues the verification mail.
func (s *Service) IssueOTP(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	codeHash, err := auth.HashPassword(code)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.OTPChallenge{}).Error; err != nil {
			return err
		}
		challenge := models.OTPChallenge{
			UserID:    userID,
			CodeHash:  codeHash,
			ExpiresAt: s.now().Add(s.otpExpiry),
		}
		return tx.Create(&challenge).Error
	})
	if err != nil {
		return err
	}

	if s.queue != nil {
		task, err := tasks.NewOTPEmailTask(tasks.OTPEmailPayload{
			UserID: userID,
			Email:  user.Email,
			Code:   code,
		})
		if err != nil {
			return err
		}
		if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
			s.logger.Error("failed to enqueue otp mail", "user_id", userID, "error", err)
		}
	}

	return nil
}

// VerifyOTP consumes the user's active challenge on a matching code and
// marks the email verified. A mismatch leaves the challenge in place so
// the user can retry.
func (s *Service) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) (*models.User, error) {
	var challenge models.OTPChallenge
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND consumed_at IS NULL", userID).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoChallenge
		}
		return nil, err
	}

	if challenge.Expired(s.now()) {
		return nil, ErrOTPExpired
	}

	if !auth.CheckPassword(strings.TrimSpace(code), challenge.CodeHash) {
		return nil, ErrInvalidOTP
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		if err := tx.Model(&challenge).Update("consumed_at", &now).Error; err != nil {
			return err
		}
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("email_verified", true).Error
	})
	if err != nil {
		return nil, err
	}

	user.EmailVerified = true
	s.logger.Info("otp verified", "user_id", userID)
	return &user, nil
}

// UserInput is the admin-managed create/update payload. Exactly one of
// Email and LocalEmail must be set on create; LocalEmail is joined with
// the tenant domain.
type UserInput struct {
	TenantID   uuid.UUID
	FirstName  string
	LastName   string
	RoleID     uuid.UUID
	MFAEnabled bool
	MFATypes   []string
	IsActive   bool
	Email      string
	LocalEmail string
	Password   string // empty = generate
	AvatarURL  string
}

// CreateUser provisions a user through the admin path, bypassing OTP.
// When no password is supplied a strong one is generated; the plaintext
// is returned once and never stored.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, string, error) {
	if in.TenantID == uuid.Nil {
		return nil, "", ErrMissingTenant
	}

	tn, err := s.tenants.Get(ctx, in.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, "", ErrTenantNotFound
		}
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		local := strings.TrimSpace(in.LocalEmail)
		if local == "" {
			return nil, "", ErrMissingEmail
		}
		email = strings.ToLower(local + "@" + tn.Domain)
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, "", ErrUserExists
	}

	r, err := s.roles.Get(ctx, in.RoleID)
	if err != nil {
		return nil, "", ErrRoleNotFound
	}

	plain := in.Password
	generated := ""
	if plain == "" {
		plain, err = password.Generate(password.DefaultLength)
		if err != nil {
			return nil, "", err
		}
		generated = plain
	}
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		TenantID:     &tn.ID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		RoleID:       r.ID,
		MFAEnabled:   in.MFAEnabled,
		MFATypes:     in.MFATypes,
		AvatarURL:    in.AvatarURL,
		IsActive:     in.IsActive,
		// Admin-created users skip the wizard.
		EmailVerified:       true,
		OnboardingCompleted: true,
	}

	// SuperAdmin users are global and always active.
	if r.Name == models.RoleSuperAdmin {
		user.TenantID = nil
		user.IsActive = true
	}

	if user.MFAEnabled && models.StringList(in.MFATypes).Contains(models.MFAMethodTOTP) {
		secret, err := s.newTOTPSecret()
		if err != nil {
			return nil, "", err
		}
		user.TOTPSecret = secret
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, "", err
	}

	user.Tenant = tn
	user.Role = r
	s.logger.Info("user created", "user_id", user.ID, "email", email, "role", r.Name)
	return &user, generated, nil
}

// UpdateUser edits an existing user. Email is immutable; a SuperAdmin
// user is forced active regardless of the submitted toggle.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.RoleID != uuid.Nil && in.RoleID != user.RoleID {
		r, err := s.roles.Get(ctx, in.RoleID)
		if err != nil {
			return nil, ErrRoleNotFound
		}
		user.RoleID = r.ID
		user.Role = r
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.MFAEnabled = in.MFAEnabled
	user.MFATypes = in.MFATypes
	user.IsActive = in.IsActive
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}

	if user.MFAEnabled && user.MFATypes.Contains(models.MFAMethodTOTP) && user.TOTPSecret == "" {
		secret, err := s.newTOTPSecret()
		if err != nil {
			return nil, err
		}
		user.TOTPSecret = secret
	}

	if user.IsSuperAdmin() {
		user.IsActive = true
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive toggles a user's active flag. SuperAdmin users stay active.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsSuperAdmin() {
		active = true
	}

	if err := s.db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	return user, nil
}

// CompleteOnboarding marks the wizard finished for a user.
func (s *Service) CompleteOnboarding(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("onboarding_completed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all visible users. SuperAdmins (nil tenantID) see
// everyone; tenant admins see their tenant only. The client filters the
// full set; no pagination.
func (s *Service) ListUsers(ctx context.Context, tenantID *uuid.UUID, includeTenants bool) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).
		Preload("Role").
		Order("created_at DESC")
	if includeTenants {
		query = query.Preload("Tenant")
	}
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser loads a user with tenant and role preloaded.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, id)
}

// GetUserByEmail resolves a user by address; the OTP verification
// endpoint keys on the email the code was mailed to.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) getUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Role").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// newTOTPSecret generates a base32 seed and encrypts it for storage.
func (s *Service) newTOTPSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	seed := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	return s.encryptor.EncryptString(seed)
}
