package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "users-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestValidateFields(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name   string
		in     UserFields
		errors map[string]string
	}{
		{
			name: "valid with first name",
			in:   UserFields{Login: "ivan42", FirstName: strPtr("Ivan"), LastName: "Petrov"},
		},
		{
			name: "valid without first name",
			in:   UserFields{Login: "ivan", LastName: "Petrov"},
		},
		{
			name:   "missing login",
			in:     UserFields{LastName: "Petrov"},
			errors: map[string]string{"login": "login is required"},
		},
		{
			name:   "non alphanumeric login",
			in:     UserFields{Login: "ab!cd", LastName: "Petrov"},
			errors: map[string]string{"login": "login must be alphanumeric"},
		},
		{
			name:   "non ascii login",
			in:     UserFields{Login: "иван", LastName: "Petrov"},
			errors: map[string]string{"login": "login must be alphanumeric"},
		},
		{
			name:   "empty last name",
			in:     UserFields{Login: "ivan", LastName: ""},
			errors: map[string]string{"lastName": "length of the last name must be greater than 0"},
		},
		{
			name:   "empty first name",
			in:     UserFields{Login: "ivan", FirstName: strPtr(""), LastName: "Petrov"},
			errors: map[string]string{"firstName": "length of the first name must be greater than 0"},
		},
		{
			name: "every violation at once",
			in:   UserFields{Login: "a b", FirstName: strPtr(""), LastName: ""},
			errors: map[string]string{
				"login":     "login must be alphanumeric",
				"firstName": "length of the first name must be greater than 0",
				"lastName":  "length of the last name must be greater than 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFields(v, &tt.in)
			if tt.errors == nil {
				assert.NoError(t, err)
				return
			}

			var validationErr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.errors, validationErr.Fields)
		})
	}
}
