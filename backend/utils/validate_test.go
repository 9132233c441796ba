package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title" validate:"notblank"`
	Total int    `json:"total" validate:"gt=0"`
	Pass  int    `json:"pass" validate:"ltefield=Total"`
	Note  string `json:"note" validate:"required"`
}

func TestFieldErrorsFromValidator(t *testing.T) {
	err := Validate.Struct(sample{Title: "  ", Total: 5, Pass: 6})
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, notBlankText, fields["title"])
	assert.Equal(t, requiredText, fields["note"])
	assert.Contains(t, fields, "pass")
	assert.NotContains(t, fields, "total")
}

func TestFieldErrorsFromDomainError(t *testing.T) {
	cause := errors.New("duplicate")
	err := NewValidationError(cause, FieldError{Field: "userId", Error: "already exists"})

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"userId": "already exists"}, fields)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate", err.Error())

	fields, ok = FieldErrors(NewValidationError(nil))
	require.True(t, ok)
	assert.Equal(t, "validation failed", fields["error"])

	_, ok = FieldErrors(errors.New("boom"))
	assert.False(t, ok)
	assert.False(t, IsValidation(nil))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Go", CleanString("  Go "))
	assert.Equal(t, "go", CleanString(" Go", true))
}
