package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeValidation, "latitude out of range")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped by fmt keeps code", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeTerminalState, "transfer is completed"))
		assert.True(t, HasCode(err, CodeTerminalState))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeConflict, "version mismatch")
		err := Wrap(inner, CodeInternal, "failed to update transfer")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.ErrorIs(t, err, inner)
	})
}

func TestWithDetail(t *testing.T) {
	err := New(CodePendingAdminReview, "awaiting review").WithDetail("status", "AWAITING_ADMIN_REVIEW")
	wrapped := fmt.Errorf("gate: %w", err)
	assert.Equal(t, "AWAITING_ADMIN_REVIEW", DetailOf(wrapped, "status"))
	assert.Empty(t, DetailOf(wrapped, "missing"))
}
