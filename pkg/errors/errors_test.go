package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFound("User", nil), http.StatusNotFound},
		{NewBadRequest("bad", nil), http.StatusBadRequest},
		{NewValidation(FieldViolation{Field: "email", Message: "is required"}), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NewConflict("dup", nil), http.StatusConflict},
		{NewUnavailable("down", nil), http.StatusServiceUnavailable},
		{NewInternal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestFromWrappedError(t *testing.T) {
	cause := errors.New("row missing")
	wrapped := fmt.Errorf("lookup: %w", NewNotFound("Pharmacy", cause))

	appErr := From(wrapped)
	assert.Equal(t, "Pharmacy not found", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrConflict))
}

func TestFromPlainErrorIsInternal(t *testing.T) {
	appErr := From(errors.New("pool exhausted"))
	assert.Equal(t, ErrInternal, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.Contains(t, appErr.Error(), "pool exhausted")
}
