package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "unknown", RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestInitializeWithWriter_TeesJSONToSink(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var sink bytes.Buffer
	InitializeWithWriter("production", &sink)

	ctx := WithRequestID(context.Background(), "req-42")
	Warn(ctx, "stripe failed", zap.Error(errors.New("connection reset")))

	line := strings.TrimSpace(sink.String())
	require.NotEmpty(t, line)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "stripe failed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "connection reset", entry["error"])
}

func TestFor_AnnotatesInjectedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-7")
	For(ctx, base).Info("checkout session created")
	For(context.Background(), base).Info("no request")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "unknown", logs.All()[1].ContextMap()["request_id"])
}
