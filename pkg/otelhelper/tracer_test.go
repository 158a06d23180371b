package otelhelper_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "sessions.save",
		attribute.String(otelhelper.SessionIDKey, "s1"))
	otelhelper.SetError(span, fmt.Errorf("save: %w", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	assert.Equal(t, "sessions.save", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String(otelhelper.SessionIDKey, "s1"))
	assert.Contains(t, ended[0].Attributes(), attribute.String(otelhelper.ErrorTypeKey, "*errors.errorString"))
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestNoopTracer(t *testing.T) {
	_, span := otelhelper.StartSpan(context.Background(), otelhelper.NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.IsRecording())
}
