package cryptolab

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamError(t *testing.T) {
	err := NewParamError("p", "must be at least 2", nil)
	assert.Equal(t, "invalid parameter p: must be at least 2", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidParameters))

	wrapped := fmt.Errorf("decode request: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInvalidParameters))

	var pe *ParamError
	if assert.True(t, errors.As(wrapped, &pe)) {
		assert.Equal(t, "p", pe.Param)
	}
}

func TestParamErrorWithCause(t *testing.T) {
	err := NewParamError("k", "scalar is not invertible", ErrNonInvertible)
	assert.Contains(t, err.Error(), ErrNonInvertible.Error())

	// Both the cause and the category match.
	assert.True(t, errors.Is(err, ErrNonInvertible))
	assert.True(t, errors.Is(err, ErrInvalidParameters))
	assert.False(t, errors.Is(err, ErrKeyGeneration))
}
