package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/log"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, expected := range testCases {
		assert.Equal(t, expected, log.ParseLevel(input), input)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := log.New(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "block_id", "b1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "b1", entry["block_id"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	log.New(&buf, "info", "text").Info("hello", "module", "canvas")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "module=canvas")
}

func TestContextLogger(t *testing.T) {
	fallback := slog.Default()
	scoped := slog.Default().With("request_id", "r1")

	assert.Same(t, fallback, log.FromContext(context.Background(), fallback))
	assert.Same(t, scoped, log.FromContext(log.WithLogger(context.Background(), scoped), fallback))
}
