// Package notify delivers user-facing editor notifications (toasts) to pluggable sinks.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/eventbus"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
)

// Level classifies a notification for rendering.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a single user-facing message.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message}
}

func Error(message string) Notification {
	return Notification{Level: LevelError, Message: message}
}

func Info(message string) Notification {
	return Notification{Level: LevelInfo, Message: message}
}

// Sink receives notifications. Implementations must not block the caller.
type Sink interface {
	Notify(notification Notification)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(Notification) {}

// Fanout forwards each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(notification Notification) {
	for _, sink := range f {
		sink.Notify(notification)
	}
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(notification Notification) {
	level := slog.LevelInfo
	if notification.Level == LevelError {
		level = slog.LevelWarn
	}

	s.logger.Log(context.Background(), level, notification.Message, "level", notification.Level)
}

// EventBusSink publishes notifications as events keyed by editor session.
type EventBusSink struct {
	publisher eventbus.EventPublisher
	sessionID string
	logger    *slog.Logger
}

func NewEventBusSink(publisher eventbus.EventPublisher, sessionID string, logger *slog.Logger) *EventBusSink {
	return &EventBusSink{
		publisher: publisher,
		sessionID: sessionID,
		logger:    logger,
	}
}

func (s *EventBusSink) Notify(notification Notification) {
	event := events.NewNotificationEmitted(string(notification.Level), notification.Message)
	event.SetSessionID(s.sessionID)

	err := s.publisher.Publish(context.Background(), s.sessionID, event)
	if err != nil {
		s.logger.Error("Failed to publish notification", "session_id", s.sessionID, "error", err)
	}
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(notification Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, notification)
}

// Drain returns the recorded notifications and clears the recorder.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := r.notifications
	r.notifications = nil

	if drained == nil {
		return []Notification{}
	}

	return drained
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notifications) == 0 {
		return Notification{}, false
	}

	return r.notifications[len(r.notifications)-1], true
}
