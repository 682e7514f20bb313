package models

import "github.com/google/uuid"

type User struct {
	Base
	TenantID  *uuid.UUID `gorm:"type:uuid;index" json:"tenantId,omitempty"` // nil only for SuperAdmin users
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`

	PasswordHash string `gorm:"not null" json:"-"`

	RoleID uuid.UUID `gorm:"type:uuid;index" json:"roleId"`

	// Registration intake fields, kept for the tenant record.
	Company       string `json:"company,omitempty"`
	Country       string `json:"country,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	EmployeeCount string `json:"employeeCount,omitempty"`

	MFAEnabled bool       `gorm:"default:false" json:"mfaEnabled"`
	MFATypes   StringList `gorm:"type:text" json:"mfaType"` // subset of {TOTP, EMAIL, SMS}
	// Age-encrypted TOTP seed, set only when MFATypes includes TOTP.
	TOTPSecret string `json:"-"`

	AvatarURL string `json:"avatar,omitempty"`

	IsActive            bool `gorm:"default:true" json:"isActive"`
	IsTenantAdmin       bool `gorm:"default:false" json:"isTenantAdmin"`
	EmailVerified       bool `gorm:"default:false" json:"emailVerified"`
	OnboardingCompleted bool `gorm:"default:false" json:"onboardingCompleted"`

	// Relationships
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Role   *Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsSuperAdmin reports whether the user's loaded role is SuperAdmin.
func (u *User) IsSuperAdmin() bool {
	return u.Role != nil && u.Role.Name == RoleSuperAdmin
}
