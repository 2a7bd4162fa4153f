package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	config := NewConfig("info", "json", "card-ledger", "test", "test", false)
	InitLoggerWithWriter(config, &buf)

	slog.Default().Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "card-ledger", entry["service"])
	assert.Equal(t, "value", entry["key"])
}

func TestInitLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	config := NewConfig("warn", "text", "card-ledger", "test", "test", false)
	InitLoggerWithWriter(config, &buf)

	slog.Default().Info("filtered out")
	assert.Empty(t, buf.String())

	slog.Default().Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestFromContext_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(NewConfig("info", "json", "card-ledger", "test", "test", false), &buf)

	id := GenerateRequestID()
	ctx := WithRequestID(context.Background(), id)
	FromContext(ctx).Info("traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry["request_id"])
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestConfig_LogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{Level: "debug"}.LogLevel())
	assert.Equal(t, slog.LevelWarn, Config{Level: "WARNING"}.LogLevel())
	assert.Equal(t, slog.LevelInfo, Config{Level: "bogus"}.LogLevel())
}
