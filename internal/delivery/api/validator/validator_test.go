package validator

import (
	"testing"

	domainerrors "accounts/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email     string  `json:"email" validate:"required"`
	FirstName string  `json:"first_name" validate:"required,max=5"`
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,min=2"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&sample{Email: "a@b.com", FirstName: "A"}))

	err := v.Validate(&sample{FirstName: "toolong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details(), "email is required")
	assert.Contains(t, appErr.Details(), "first_name must be at most 5 characters")

	short := "x"
	err = v.Validate(&sample{Email: "a@b.com", FirstName: "A", Nickname: &short})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "nickname must be at least 2 characters", appErr.Details())
}
