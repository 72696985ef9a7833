package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvalidConfigError(t *testing.T) {
	err := NewInvalidConfigError("decay rate %v must be in (0,1)", 1.5)

	assert.True(t, IsInvalidConfigError(err))
	assert.True(t, Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "decay rate 1.5 must be in (0,1)")
	assert.False(t, Is(err, ErrGraphData))
}

func TestIsInvalidConfigError_Nil(t *testing.T) {
	assert.False(t, IsInvalidConfigError(nil))
	assert.False(t, IsInvalidConfigError(New("other")))
}

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrapf(ErrUnknownNode, "pin %q", "ghost")

	assert.True(t, Is(err, ErrUnknownNode))
	assert.Equal(t, `pin "ghost": unknown node`, err.Error())
}
