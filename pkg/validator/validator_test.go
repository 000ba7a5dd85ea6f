package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemPayload struct {
	ProductID int64 `validate:"required,gt=0"`
	Size      int   `validate:"required,gt=0"`
	Quantity  int   `validate:"required,gt=0"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(addItemPayload{ProductID: 4, Size: 9, Quantity: 2})
	assert.NoError(t, err)
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(addItemPayload{ProductID: 4, Size: 9, Quantity: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Contains(t, fields, "Quantity")
	assert.Equal(t, "is required", fields["Quantity"])
	assert.Contains(t, valErr.Error(), "Quantity")
}

func TestValidate_GreaterThanMessage(t *testing.T) {
	err := Validate(addItemPayload{ProductID: 4, Size: -1, Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be greater than 0", valErr.Fields()["Size"])
}
