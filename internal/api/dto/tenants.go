package dto

// TenantRequest covers both create and update. Industry "Other" is a
// free-text override: the submitted industryOther value is stored.
type TenantRequest struct {
	Name             string   `json:"name"`
	Domain           string   `json:"domain"`
	Industry         string   `json:"industry"`
	IndustryOther    string   `json:"industryOther,omitempty"`
	SubscriptionTier string   `json:"subscriptionTier"`
	CompanyWebsite   string   `json:"companyWebsite"`
	BillingStreet    string   `json:"billingStreet"`
	BillingCity      string   `json:"billingCity"`
	BillingState     string   `json:"billingState"`
	BillingZip       string   `json:"billingZip"`
	BillingCountry   string   `json:"billingCountry"`
	BillingPhone     string   `json:"billingPhone"`
	MFAEnabled       bool     `json:"mfaEnabled"`
	AllowedMFA       []string `json:"allowedMfa"`
	IsActive         bool     `json:"isActive"`
}

func (r TenantRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Tenant name is required"
	}
	if r.Domain == "" {
		errors["domain"] = "Domain is required"
	}

	return errors
}

type RoleRequest struct {
	Name string `json:"name"`
}

type StatusRequest struct {
	IsActive bool `json:"isActive"`
}
