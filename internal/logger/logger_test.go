package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Info("variant generated", Fields{"style": "minimal", "attempt": 1})
	Warn("variant retry", Fields{"style": "bold"})
	Error("variant failed", errors.New("boom"), Fields{"style": "modern"})
	Debug("prompt built", nil)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "variant generated", entries[0].Message)
	assert.Equal(t, "minimal", entries[0].ContextMap()["style"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
}

func TestInit_LevelParsing(t *testing.T) {
	t.Cleanup(func() { Set(zap.NewNop()) })

	require.NoError(t, Init("warn", "development"))
	assert.False(t, current().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, current().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Init("debug", "production"))
	assert.True(t, current().Core().Enabled(zapcore.DebugLevel))
}

func TestToZapFields_Empty(t *testing.T) {
	assert.Nil(t, toZapFields(nil))
	assert.Len(t, toZapFields(Fields{"a": 1, "b": "two"}), 2)
}
