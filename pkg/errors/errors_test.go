package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create payment: %w", Clone(ErrDuplicatePayment, "Payment already exists for Q1 2024-25"))
	appErr := FromError(wrapped)
	assert.Equal(t, "DUPLICATE_PAYMENT", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Payment already exists for Q1 2024-25", appErr.Message)
}

func TestCloneMatchesTemplate(t *testing.T) {
	notFound := Clone(ErrNotFound, "bus not found")
	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.False(t, errors.Is(notFound, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"quarter": "must be at most 4"}
	appErr := WithDetails(ErrValidation, details)
	assert.Equal(t, details, appErr.Details)
	assert.Nil(t, ErrValidation.Details)
}
