package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "users-api/pkg/errors"
)

// fieldMessages maps "<json field>.<tag>" to the message reported to clients.
var fieldMessages = map[string]string{
	"login.required":    "login is required",
	"login.alphanum":    "login must be alphanumeric",
	"lastName.required": "length of the last name must be greater than 0",
	"firstName.min":     "length of the first name must be greater than 0",
}

// newValidator creates a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateFields runs every rule on in and collects all violations into one error.
func validateFields(v *validator.Validate, in *UserFields) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := pkgerrors.NewValidationErrors(nil)
	for _, e := range validationErrors {
		out.Add(e.Field(), fieldMessage(e))
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}
