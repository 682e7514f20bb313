package provisioning_test

import (
	"testing"

	"github.com/hravenhq/hraven/internal/provisioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterInput() provisioning.RegisterInput {
	return provisioning.RegisterInput{
		FirstName:     "Jane",
		LastName:      "Doe",
		Company:       "Acme Corp",
		Email:         "jane@acme.com",
		PhoneNumber:   "555-0100",
		Country:       "US",
		EmployeeCount: "51-200",
	}
}

func TestRegisterInput_Validate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		in := validRegisterInput()
		assert.Nil(t, in.Validate())
	})

	t.Run("collects all missing fields", func(t *testing.T) {
		in := provisioning.RegisterInput{}
		verr := in.Validate()
		require.NotNil(t, verr)
		assert.Len(t, verr.Fields, 7)
		assert.Equal(t, "firstName", verr.First)
	})

	t.Run("first field follows declared order", func(t *testing.T) {
		cases := []struct {
			name  string
			mut   func(*provisioning.RegisterInput)
			first string
		}{
			{"lastName before email", func(in *provisioning.RegisterInput) {
				in.LastName = ""
				in.Email = ""
			}, "lastName"},
			{"company before country", func(in *provisioning.RegisterInput) {
				in.Company = ""
				in.Country = ""
			}, "company"},
			{"email before employeeCount", func(in *provisioning.RegisterInput) {
				in.Email = ""
				in.EmployeeCount = ""
			}, "email"},
			{"employeeCount before phone", func(in *provisioning.RegisterInput) {
				in.EmployeeCount = ""
				in.PhoneNumber = ""
			}, "employeeCount"},
			{"country before phone", func(in *provisioning.RegisterInput) {
				in.Country = ""
				in.PhoneNumber = ""
			}, "country"},
			{"phone alone", func(in *provisioning.RegisterInput) {
				in.PhoneNumber = ""
			}, "phone"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := validRegisterInput()
				tc.mut(&in)
				verr := in.Validate()
				require.NotNil(t, verr)
				assert.Equal(t, tc.first, verr.First)
			})
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		in := validRegisterInput()
		in.Email = "not-an-email"
		verr := in.Validate()
		require.NotNil(t, verr)
		assert.Equal(t, "email", verr.First)
		assert.Contains(t, verr.Fields, "email")
	})
}

func TestDeriveDomain(t *testing.T) {
	assert.Equal(t, "acme.com", provisioning.DeriveDomain("jane@acme.com"))
	assert.Equal(t, "acme.com", provisioning.DeriveDomain("  jane@ACME.COM "))
	// Domain is everything after the first '@'.
	assert.Equal(t, "b@c.com", provisioning.DeriveDomain("a@b@c.com"))
	assert.Equal(t, "", provisioning.DeriveDomain("no-at-sign"))
}
