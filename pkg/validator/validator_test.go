package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type addLineInput struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"required,gte=1"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(loginInput{Email: "shopper@example.com", Password: "hunter22"})
	assert.NoError(t, err)
}

func TestValidate_MissingFields(t *testing.T) {
	err := Validate(addLineInput{})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["ProductID"])
	assert.Equal(t, "is required", fields["Quantity"])
}

func TestValidate_TagMessages(t *testing.T) {
	err := Validate(loginInput{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 6 characters", fields["Password"])
}

func TestValidate_GTE(t *testing.T) {
	err := Validate(addLineInput{ProductID: "p-1", Quantity: -2})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Error(), "field 'Quantity' must be greater than or equal to 1")
}
