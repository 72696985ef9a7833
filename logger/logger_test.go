package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() {
		Named("test").Infow("hello", FieldNode, "a")
	})
}

func TestInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev; JSONOutput = false })

	require.NoError(t, Initialize(true, false))
	assert.True(t, JSONOutput)
	assert.False(t, Logger.Desugar().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Initialize(false, true))
	assert.False(t, JSONOutput)
	assert.True(t, Logger.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewNop().Sugar()
	assert.Same(t, l, OrNop(l))
}
