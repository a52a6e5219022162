package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	prod := NewLogger("production")
	require.NotNil(t, prod)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))

	dev := NewLogger("development")
	require.NotNil(t, dev)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}
