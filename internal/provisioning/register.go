package provisioning

import (
	"fmt"
	"strings"
)

// registerFieldOrder fixes which missing field is reported first; the
// signup form focuses that field.
var registerFieldOrder = []string{
	"firstName", "lastName", "company", "email", "employeeCount", "country", "phone",
}

// RegisterInput is the self-service tenant-admin registration payload.
type RegisterInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Company       string `json:"company"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Country       string `json:"country"`
	EmployeeCount string `json:"employeeCount"`
	Industry      string `json:"industry"`
}

// ValidationError collects every missing or malformed field and names
// the first one in the declared order.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
	First  string            `json:"first"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.First)
}

// Validate checks all required fields, collecting errors rather than
// failing fast. Runs before any storage or queue access.
func (in *RegisterInput) Validate() *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if strings.TrimSpace(in.Company) == "" {
		fields["company"] = "Company name is required"
	}
	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(in.Email, "@") || DeriveDomain(in.Email) == "" {
		fields["email"] = "Invalid email address"
	}
	if strings.TrimSpace(in.EmployeeCount) == "" {
		fields["employeeCount"] = "Employee count is required"
	}
	if strings.TrimSpace(in.Country) == "" {
		fields["country"] = "Country is required"
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		fields["phone"] = "Phone number is required"
	}

	if len(fields) == 0 {
		return nil
	}

	err := &ValidationError{Fields: fields}
	for _, name := range registerFieldOrder {
		if _, ok := fields[name]; ok {
			err.First = name
			break
		}
	}
	return err
}

// DeriveDomain returns the substring after the first '@' of an email
// address, lowercased. The tenant lookup keys on this domain.
func DeriveDomain(email string) string {
	_, domain, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found {
		return ""
	}
	return strings.ToLower(domain)
}
