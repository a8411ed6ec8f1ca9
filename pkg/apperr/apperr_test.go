package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	err := Newf(ErrInsufficientStock, "Only %d in stock for %s", 1, "Widget")

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Only 1 in stock for Widget", err.Error())

	wrapped := fmt.Errorf("create order: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.Equal(t, "Only 1 in stock for Widget", Message(wrapped))
}

func TestMessagePlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
