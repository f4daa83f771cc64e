package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneMatchesSentinel(t *testing.T) {
	clone := Clone(ErrUnauthorized, "refresh token reused")
	wrapped := fmt.Errorf("refresh: %w", clone)

	assert.True(t, errors.Is(wrapped, ErrUnauthorized))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "refresh token reused", FromError(wrapped).Message)
}

func TestBadRequestDetails(t *testing.T) {
	err := BadRequest("email", "email already taken")
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestFromValidationFirstErrorPerField(t *testing.T) {
	type payload struct {
		Name       string `validate:"required,max=15"`
		WebsiteURL string `validate:"required,url"`
	}
	err := validator.New().Struct(payload{})
	require.Error(t, err)

	appErr := FromValidation(err, "invalid blog payload")
	require.Len(t, appErr.Details, 2)
	assert.Equal(t, "name", appErr.Details[0].Field)
	assert.Equal(t, "websiteURL", appErr.Details[1].Field)
	assert.Equal(t, "name is required", appErr.Details[0].Message)
}
