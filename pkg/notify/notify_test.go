package notify_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/mocks"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
)

func TestRecorder_Drain(t *testing.T) {
	recorder := notify.NewRecorder()

	assert.Empty(t, recorder.Drain())

	recorder.Notify(notify.Success("Blocks connected"))
	recorder.Notify(notify.Error("Invalid connection"))

	last, ok := recorder.Last()
	assert.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)

	drained := recorder.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, notify.Success("Blocks connected"), drained[0])
	assert.Empty(t, recorder.Drain())

	_, ok = recorder.Last()
	assert.False(t, ok)
}

func TestFanout(t *testing.T) {
	first := notify.NewRecorder()
	second := notify.NewRecorder()

	notify.Fanout{first, second, notify.Discard{}}.Notify(notify.Info("hello"))

	assert.Len(t, first.Drain(), 1)
	assert.Len(t, second.Drain(), 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer

	sink := notify.NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))
	sink.Notify(notify.Error("Invalid connection"))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "Invalid connection")
}

func TestEventBusSink_PublishesScopedEvent(t *testing.T) {
	publisher := &mocks.MockEventPublisher{}
	publisher.On("Publish", mock.Anything, "session-1", mock.MatchedBy(func(event events.Event) bool {
		emitted, ok := event.(*events.NotificationEmitted)

		return ok && emitted.SessionID == "session-1" && emitted.Level == "success" && emitted.Message == "Template applied"
	})).Return(nil)

	sink := notify.NewEventBusSink(publisher, "session-1", slog.Default())
	sink.Notify(notify.Success("Template applied"))

	publisher.AssertExpectations(t)
}

func TestEventBusSink_PublishErrorIsSwallowed(t *testing.T) {
	publisher := &mocks.MockEventPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bus down"))

	sink := notify.NewEventBusSink(publisher, "session-1", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	assert.NotPanics(t, func() { sink.Notify(notify.Info("x")) })
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
