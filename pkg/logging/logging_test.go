package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        INFO,
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		" error ": ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestRequestIDIsAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithCore(core).With(zap.String("symbol", "ABC"))

	ctx := WithRequestID(context.Background(), "req-1")
	l.Info(ctx, "order accepted", zap.Uint64("order_id", 7))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "ABC", fields["symbol"])
	assert.Equal(t, uint64(7), fields["order_id"])
}

func TestMissingRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewLoggerWithCore(core).Warn(context.Background(), "no id")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "no-request-id", logs.All()[0].ContextMap()["request_id"])
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a := getRequestID(NewRequestID(context.Background()))
	b := getRequestID(NewRequestID(context.Background()))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestGetLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithCore(core)

	ctx := IntoContext(context.Background(), l)
	GetLogger(ctx).Debug(ctx, "from context")
	assert.Equal(t, 1, logs.Len())

	assert.NotNil(t, GetLogger(context.Background()))
}
