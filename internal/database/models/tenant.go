package models

// MFA method names shared by tenant policy and user settings.
const (
	MFAMethodEmail = "EMAIL"
	MFAMethodSMS   = "SMS"
	MFAMethodTOTP  = "TOTP"
)

type Tenant struct {
	Base
	Name             string `gorm:"uniqueIndex;not null" json:"name"`
	Domain           string `gorm:"uniqueIndex;not null" json:"domain"` // email suffix for tenant users
	Industry         string `json:"industry"`
	SubscriptionTier string `gorm:"default:'Free'" json:"subscriptionTier"` // Free, Pro, Enterprise
	CompanyWebsite   string `json:"companyWebsite"`
	LogoURL          string `json:"logoUrl"`
	Theme            string `gorm:"default:'default'" json:"theme"` // default, dark, light

	BillingStreet  string `json:"billingStreet"`
	BillingCity    string `json:"billingCity"`
	BillingState   string `json:"billingState"`
	BillingZip     string `json:"billingZip"`
	BillingCountry string `json:"billingCountry"`
	BillingPhone   string `json:"billingPhone"`

	MFAEnabled bool       `gorm:"default:false" json:"mfaEnabled"`
	AllowedMFA StringList `gorm:"type:text" json:"allowedMfa"` // subset of {EMAIL, SMS, TOTP}

	IsActive bool `gorm:"default:true" json:"isActive"`

	// Relationships
	Users []User `gorm:"foreignKey:TenantID" json:"-"`
	Roles []Role `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}
