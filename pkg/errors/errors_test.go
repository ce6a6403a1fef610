package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_CollectsAllFields(t *testing.T) {
	err := NewValidationErrors(nil)
	err.Add("login", "login is required")
	err.Add("lastName", "length of the last name must be greater than 0")
	err.Add("login", "login must be alphanumeric")

	assert.Len(t, err.Fields, 2)
	assert.Equal(t, "login is required", err.Fields["login"])
	assert.Equal(t, "validation failed: length of the last name must be greater than 0, login is required", err.Error())
}

func TestNotFoundError_Is(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewNotFoundError("user", "user not found"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrBadRequest))
	assert.Equal(t, "lookup: user not found", err.Error())
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
}

func TestBadRequestError_Is(t *testing.T) {
	err := NewBadRequestError("payload is required")

	assert.True(t, stderrors.Is(err, ErrBadRequest))
	assert.Equal(t, "payload is required", err.Error())
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("failed to load user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user: connection refused", err.Error())
	assert.Equal(t, "internal server error", ErrInternal.Error())
}
