package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json格式", func(t *testing.T) {
		l, err := New(Options{Level: "warn", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("console格式", func(t *testing.T) {
		l, err := New(Options{Level: "debug", Format: "console"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("非法级别", func(t *testing.T) {
		_, err := New(Options{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("非法格式", func(t *testing.T) {
		_, err := New(Options{Level: "info", Format: "xml"})
		assert.Error(t, err)
	})
}

func TestSetup(t *testing.T) {
	l, cleanup, err := Setup(Options{Level: "info", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.Same(t, l, zap.L())

	cleanup()
	assert.NotSame(t, l, zap.L(), "cleanup后应恢复原全局Logger")
}
