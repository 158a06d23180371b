package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/eventbus"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/log"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/otelhelper"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/templates"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Session is one open editor: a canvas controller over its own graph store,
// plus the envelope of the automation it was opened from or saved as.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu         sync.Mutex
	automation models.Automation

	controller *canvas.Controller
	recorder   *notify.Recorder
}

func (s *Session) Controller() *canvas.Controller {
	return s.controller
}

// Notifications drains the notifications raised since the previous call.
func (s *Session) Notifications() []notify.Notification {
	return s.recorder.Drain()
}

// Automation returns the saved envelope of the session, without blocks.
func (s *Session) Automation() models.Automation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.automation
}

func (s *Session) setAutomation(update func(*models.Automation)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(&s.automation)
}

// Sessions manages the open editor sessions and their link to persistence.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	persistence persistence.Persistence
	templates   templates.Source
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	validate    *validator.Validate
	gridSize    float64
	logger      *slog.Logger
	now         func() time.Time
}

type SessionsOption func(*Sessions)

// WithPublisher publishes the graph events and notifications of every session.
func WithPublisher(publisher eventbus.EventPublisher) SessionsOption {
	return func(s *Sessions) {
		s.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) SessionsOption {
	return func(s *Sessions) {
		s.tracer = tracer
	}
}

// WithGridSize sets the snapping grid of new sessions. Zero disables snapping.
func WithGridSize(size float64) SessionsOption {
	return func(s *Sessions) {
		s.gridSize = size
	}
}

func WithLogger(logger *slog.Logger) SessionsOption {
	return func(s *Sessions) {
		s.logger = logger
	}
}

// NewSessions creates a session manager backed by persistence and a template source.
func NewSessions(persistence persistence.Persistence, source templates.Source, opts ...SessionsOption) *Sessions {
	sessions := &Sessions{
		sessions:    make(map[string]*Session),
		persistence: persistence,
		templates:   source,
		tracer:      otelhelper.NoopTracer(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		gridSize:    canvas.DefaultGridSize,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(sessions)
	}

	return sessions
}

// HealthCheck checks the health of the persistence layer.
func (s *Sessions) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create opens an empty session, or one seeded from templateID when it is set.
func (s *Sessions) Create(ctx context.Context, templateID string) (*Session, []graph.Issue, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.create",
		attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	var template *models.AutomationTemplate

	if templateID != "" {
		found, err := s.templates.Template(ctx, templateID)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, nil, err
		}

		template = found
	}

	session := s.newSession()
	span.SetAttributes(attribute.String(otelhelper.SessionIDKey, session.ID))

	issues := []graph.Issue{}

	if template != nil {
		applied, err := session.controller.ApplyTemplate(template)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, nil, err
		}

		issues = applied
		session.automation.TemplateID = template.ID
	}

	s.register(session)
	log.FromContext(ctx, s.logger).Info("Session created", "session_id", session.ID, "template_id", templateID)

	return session, issues, nil
}

// Get returns an open session.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, &ServiceError{Op: "GetSession", Code: "session_not_found", Message: "session " + id + " not found", Err: ErrSessionNotFound}
	}

	return session, nil
}

// List returns the open sessions, oldest first.
func (s *Sessions) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}

	slices.SortFunc(sessions, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return sessions
}

// Close discards a session and its unsaved graph.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return &ServiceError{Op: "CloseSession", Code: "session_not_found", Message: "session " + id + " not found", Err: ErrSessionNotFound}
	}

	delete(s.sessions, id)
	s.logger.Info("Session closed", "session_id", id)

	return nil
}

// ApplyTemplate replaces the graph of a session with a catalogue template.
func (s *Sessions) ApplyTemplate(ctx context.Context, sessionID, templateID string) ([]graph.Issue, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.apply_template",
		attribute.String(otelhelper.SessionIDKey, sessionID),
		attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	session, err := s.Get(sessionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	template, err := s.templates.Template(ctx, templateID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	issues, err := session.controller.ApplyTemplate(template)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	session.setAutomation(func(automation *models.Automation) {
		automation.TemplateID = template.ID
	})

	span.SetAttributes(attribute.Int(otelhelper.BlockCountKey, len(template.Blocks)))

	return issues, nil
}

// Templates lists the available templates.
func (s *Sessions) Templates(ctx context.Context) ([]*models.AutomationTemplate, error) {
	return s.templates.Templates(ctx)
}

func (s *Sessions) Template(ctx context.Context, id string) (*models.AutomationTemplate, error) {
	return s.templates.Template(ctx, id)
}

// SaveRequest carries the envelope fields of a save.
type SaveRequest struct {
	Name        string `json:"name"        validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Owner       string `json:"owner"       validate:"max=120"`
}

// Save stores the session graph. The first save creates the automation, later
// saves of the same session update it.
func (s *Sessions) Save(ctx context.Context, sessionID string, req SaveRequest) (*models.Automation, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.save",
		attribute.String(otelhelper.SessionIDKey, sessionID))
	defer span.End()

	session, err := s.Get(sessionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		err := NewValidationError("Save", "name_required", "automation name is required", ErrNameRequired)
		otelhelper.SetError(span, err)

		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		err := NewValidationError("Save", "invalid_request", err.Error(), ErrInvalidRequest)
		otelhelper.SetError(span, err)

		return nil, err
	}

	envelope := session.Automation()
	automation := &models.Automation{
		ID:          envelope.ID,
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		TemplateID:  envelope.TemplateID,
		CreatedAt:   envelope.CreatedAt,
		Blocks:      session.controller.Store().Blocks(),
	}

	err = s.persistence.SaveAutomation(ctx, automation)
	if err != nil {
		otelhelper.SetError(span, err)
		session.recorder.Notify(notify.Error("Could not save the automation"))

		return nil, fmt.Errorf("failed to save automation: %w", err)
	}

	session.setAutomation(func(saved *models.Automation) {
		*saved = *automation
		saved.Blocks = nil
	})

	span.SetAttributes(
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.Int(otelhelper.BlockCountKey, len(automation.Blocks)),
	)

	s.publish(ctx, session.ID, events.NewAutomationSaved(automation.ID, len(automation.Blocks)))
	session.recorder.Notify(notify.Success(fmt.Sprintf("Automation %q saved", automation.Name)))

	log.FromContext(ctx, s.logger).Info("Automation saved",
		"session_id", session.ID,
		"automation_id", automation.ID,
		"block_count", len(automation.Blocks))

	return automation, nil
}

// Open loads a saved automation into a new session. Integrity issues of the
// stored graph are reported, not rejected.
func (s *Sessions) Open(ctx context.Context, automationID string) (*Session, []graph.Issue, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.open",
		attribute.String(otelhelper.AutomationIDKey, automationID))
	defer span.End()

	automation, err := s.persistence.AutomationByID(ctx, automationID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, nil, err
	}

	session := s.newSession()
	span.SetAttributes(attribute.String(otelhelper.SessionIDKey, session.ID))

	logger := log.FromContext(ctx, s.logger)

	issues := graph.Check(automation.Blocks)
	for _, issue := range issues {
		logger.Warn("Saved automation has an integrity issue",
			"automation_id", automation.ID,
			"kind", issue.Kind,
			"block_id", issue.BlockID,
			"target_id", issue.TargetID)
	}

	session.controller.Store().ReplaceAll(automation.Blocks)
	session.automation = *automation
	session.automation.Blocks = nil

	s.register(session)
	logger.Info("Automation opened", "session_id", session.ID, "automation_id", automation.ID)

	if issues == nil {
		issues = []graph.Issue{}
	}

	return session, issues, nil
}

// Export describes the session graph as an executable flow.
func (s *Sessions) Export(ctx context.Context, sessionID string) (*Flow, error) {
	_, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.export",
		attribute.String(otelhelper.SessionIDKey, sessionID))
	defer span.End()

	session, err := s.Get(sessionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	flow := BuildFlow(session.controller.Store().Blocks())

	envelope := session.Automation()
	flow.AutomationID = envelope.ID
	flow.Name = envelope.Name

	span.SetAttributes(attribute.Int(otelhelper.BlockCountKey, len(flow.Nodes)))

	return flow, nil
}

// Automations lists the saved automations.
func (s *Sessions) Automations(ctx context.Context) ([]*models.Automation, error) {
	return s.persistence.Automations(ctx)
}

func (s *Sessions) Automation(ctx context.Context, id string) (*models.Automation, error) {
	return s.persistence.AutomationByID(ctx, id)
}

// DeleteAutomation removes a saved automation. Open sessions keep their graph
// and save it as a new automation next time.
func (s *Sessions) DeleteAutomation(ctx context.Context, id string) error {
	err := s.persistence.DeleteAutomation(ctx, id)
	if err != nil {
		return err
	}

	for _, session := range s.List() {
		session.setAutomation(func(automation *models.Automation) {
			if automation.ID == id {
				automation.ID = ""
				automation.CreatedAt = time.Time{}
			}
		})
	}

	return nil
}

func (s *Sessions) newSession() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		recorder:  notify.NewRecorder(),
	}

	logger := s.logger.With("session_id", session.ID)

	sinks := notify.Fanout{session.recorder, notify.NewLogSink(logger)}
	if s.publisher != nil {
		sinks = append(sinks, notify.NewEventBusSink(s.publisher, session.ID, logger))
	}

	listener := func(event events.Event) {
		s.publish(context.Background(), session.ID, event)
	}

	store := graph.NewStore(
		graph.WithNotifier(sinks),
		graph.WithListener(listener),
		graph.WithLogger(logger),
	)

	session.controller = canvas.NewController(store,
		canvas.WithSnap(canvas.SnapToGrid(s.gridSize)),
		canvas.WithNotifier(sinks),
		canvas.WithListener(listener),
		canvas.WithLogger(logger),
	)

	return session
}

func (s *Sessions) register(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
}

func (s *Sessions) publish(ctx context.Context, sessionID string, event events.Event) {
	if s.publisher == nil {
		return
	}

	event.SetSessionID(sessionID)

	err := s.publisher.Publish(ctx, sessionID, event)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Failed to publish event",
			"session_id", sessionID,
			"event_type", event.GetType(),
			"error", err)
	}
}
