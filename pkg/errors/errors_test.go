package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("record", "town-1")
	assert.Equal(t, "record with ID town-1 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("loading: %w", err)), "wrapping preserves the sentinel")
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("normalize", "unknown mode", nil)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "normalize")
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestAPIErrorStatusMapping(t *testing.T) {
	rateLimited := NewAPIError("anthropic", 429, "slow down")
	assert.True(t, errors.Is(rateLimited, ErrRateLimited))
	assert.True(t, IsRateLimited(rateLimited))
	assert.False(t, errors.Is(rateLimited, ErrResearchUnavailable))

	unavailable := NewAPIError("anthropic", 503, "overloaded")
	assert.True(t, errors.Is(unavailable, ErrResearchUnavailable))

	other := NewAPIError("anthropic", 500, "boom")
	assert.False(t, errors.Is(other, ErrRateLimited))
}

func TestFieldError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewFieldError("town-1", "climate", "audit-save", cause)

	assert.Contains(t, err.Error(), "town-1")
	assert.Contains(t, err.Error(), "climate")
	assert.Contains(t, err.Error(), "audit-save")
	assert.ErrorIs(t, err, cause)

	var fieldErr *FieldError
	require.ErrorAs(t, fmt.Errorf("apply: %w", err), &fieldErr)
	assert.Equal(t, "audit-save", fieldErr.Stage)
}

func TestIsCanceled(t *testing.T) {
	assert.True(t, IsCanceled(context.Canceled))
	assert.True(t, IsCanceled(fmt.Errorf("generate: %w", context.Canceled)))
	assert.False(t, IsCanceled(errors.New("other")))
}

func TestWrapIO(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapIO("read catalog file", "/etc/curator.yaml", cause)
	assert.Contains(t, err.Error(), "/etc/curator.yaml")
	assert.ErrorIs(t, err, cause)
}
