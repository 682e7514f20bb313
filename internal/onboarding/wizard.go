package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

// Step is the wizard position. The zero value is the first step, so a
// fresh Wizard starts at SystemSettings; steps outside [0,4] cannot be
// constructed through the transition functions.
type Step int

const (
	StepSystemSettings Step = iota
	StepLogo
	StepTheme
	StepAdminInvites
	StepReview
)

var stepNames = map[Step]string{
	StepSystemSettings: "system_settings",
	StepLogo:           "logo",
	StepTheme:          "theme",
	StepAdminInvites:   "admin_invites",
	StepReview:         "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether the step is one of the five wizard positions.
func (s Step) Valid() bool {
	return s >= StepSystemSettings && s <= StepReview
}

// Themes selectable in the theme step.
var Themes = []string{"default", "dark", "light"}

func ValidTheme(theme string) bool {
	for _, t := range Themes {
		if t == theme {
			return true
		}
	}
	return false
}

var (
	ErrAtFirstStep = errors.New("already at the first step")
	ErrAtLastStep  = errors.New("already at the review step")
)

// ValidationError reports why a forward transition was rejected. The
// wizard state is unchanged when it is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Draft accumulates the setup data entered across the wizard steps.
type Draft struct {
	CompanyName    string   `json:"companyName"`
	CompanyWebsite string   `json:"companyWebsite"`
	BillingInfo    string   `json:"billingInfo"`
	LogoURL        string   `json:"logoUrl,omitempty"`
	Theme          string   `json:"theme"`
	AdminEmails    []string `json:"additionalAdmins"`
}

// Wizard is the resumable onboarding state: current step plus draft.
type Wizard struct {
	Step  Step  `json:"currentStep"`
	Draft Draft `json:"onboardingData"`
}

// New returns a wizard at the first step with the default theme.
func New() Wizard {
	return Wizard{Draft: Draft{Theme: "default"}}
}

// Prefill seeds a fresh wizard from registration data: the company name
// and a website guessed from the tenant domain.
func Prefill(companyName, domain string) Wizard {
	w := New()
	w.Draft.CompanyName = companyName
	if domain != "" {
		w.Draft.CompanyWebsite = "https://www." + domain
	}
	return w
}

// Next advances one step. Leaving the system-settings step requires
// company name, an https:// website, and billing info; other steps
// advance without a gate. A rejected transition returns the wizard
// unchanged.
func (w Wizard) Next() (Wizard, error) {
	if w.Step == StepReview {
		return w, ErrAtLastStep
	}

	if w.Step == StepSystemSettings {
		if verr := w.validateSystemSettings(); verr != nil {
			return w, verr
		}
	}

	w.Step++
	return w, nil
}

// Prev steps back one step; no validation required.
func (w Wizard) Prev() (Wizard, error) {
	if w.Step == StepSystemSettings {
		return w, ErrAtFirstStep
	}
	w.Step--
	return w, nil
}

func (w Wizard) validateSystemSettings() *ValidationError {
	d := w.Draft
	if strings.TrimSpace(d.CompanyName) == "" {
		return &ValidationError{Field: "companyName", Message: "Company name is required."}
	}
	website := strings.TrimSpace(d.CompanyWebsite)
	if website == "" {
		return &ValidationError{Field: "companyWebsite", Message: "Company website is required."}
	}
	if !strings.HasPrefix(website, "https://") {
		return &ValidationError{Field: "companyWebsite", Message: "Company website must start with 'https://'."}
	}
	if strings.TrimSpace(d.BillingInfo) == "" {
		return &ValidationError{Field: "billingInfo", Message: "Billing info is required."}
	}
	return nil
}
