package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := InfoLogger
	InfoLogger = zap.New(core)
	t.Cleanup(func() { InfoLogger = prev })
	return logs
}

func TestWithCarriesTypedFields(t *testing.T) {
	logs := observe(t)
	old := SetServiceName("trade-bot")
	t.Cleanup(func() { SetServiceName(old) })

	With(zap.String("symbol", "BTCUSDT"), zap.Float64("qty", 0.5)).Info("[POS] position opened")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "[POS] position opened", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "trade-bot", fields["service"])
	assert.Equal(t, "BTCUSDT", fields["symbol"])
	assert.Equal(t, 0.5, fields["qty"])
}

func TestFormatHelpers(t *testing.T) {
	logs := observe(t)

	Warn("[CYCLE] %s: no price", "ETHUSDT")
	Debug("[CYCLE] skipped %d", 2)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "[CYCLE] ETHUSDT: no price", logs.All()[0].Message)
	assert.Equal(t, "[CYCLE] skipped 2", logs.All()[1].Message)
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud"))
}
