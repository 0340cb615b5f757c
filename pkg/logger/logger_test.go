package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerAvailableBeforeInit(t *testing.T) {
	require.NotNil(t, Logger())
	require.NotPanics(t, func() { Logger().Info("noop logger swallows output") })
}

func TestInitSetsLevel(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn"))
	require.False(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.True(t, Logger().Core().Enabled(zapcore.WarnLevel))
}

func TestInitFallsBackToInfoOnUnknownLevel(t *testing.T) {
	require.NoError(t, Init("not-a-level"))
	require.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
}

func TestWithModule(t *testing.T) {
	require.NoError(t, Init("info"))
	child := WithModule("registration")
	require.NotNil(t, child)
	require.NotPanics(t, func() { child.Info("annotated entry") })
}
