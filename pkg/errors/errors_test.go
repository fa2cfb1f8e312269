package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndMatches(t *testing.T) {
	err := Clone(ErrRuleViolation, "teacher already assigned for this day")

	assert.Equal(t, "RULE_VIOLATION", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "teacher already assigned for this day", err.Message)
	assert.True(t, errors.Is(err, ErrRuleViolation))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "rule violation", ErrRuleViolation.Message)
}

func TestFromErrorNormalises(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)

	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, ErrNotFound.Code, FromError(wrapped).Code)
}

func TestStorageWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Storage(cause, "failed to list branches")

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list branches: connection refused", err.Error())
}
