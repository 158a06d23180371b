// Package web provides HTTP request and response types for the automation editor API.
package web

import (
	"time"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/services"
)

// CreateSessionRequest opens an editor session, optionally seeded from a template.
type CreateSessionRequest struct {
	TemplateID string `json:"template_id" validate:"omitempty,max=120"`
}

// AddBlockRequest represents the request body for dropping a palette entry on the canvas.
type AddBlockRequest struct {
	Type     string          `json:"type"     validate:"required"`
	Position models.Position `json:"position"`
}

// MoveBlockRequest sets a block position directly, without a drag gesture.
type MoveBlockRequest struct {
	Position models.Position `json:"position"`
}

// ConfigureBlockRequest replaces the block config, or overlays it when Merge is set.
// A null field in a merge clears it.
type ConfigureBlockRequest struct {
	Config map[string]any `json:"config" validate:"required"`
	Merge  bool           `json:"merge"`
}

type ConnectRequest struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// StartConnectionRequest enters target picking from a block's output connector.
type StartConnectionRequest struct {
	BlockID string `json:"block_id" validate:"required"`
}

type CompleteConnectionRequest struct {
	TargetID string `json:"target_id" validate:"required"`
}

// PointerRequest forwards one pointer event from the canvas shell.
type PointerRequest struct {
	Phase string              `json:"phase" validate:"required,oneof=down move up"`
	Event canvas.PointerEvent `json:"event"`
}

// ViewportRequest reports the canvas rectangle and scroll offset. Mounted false
// means the canvas is not on screen.
type ViewportRequest struct {
	Mounted  bool                  `json:"mounted"`
	Viewport canvas.StaticViewport `json:"viewport"`
}

type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// AutomationEnvelope is the saved identity of a session.
type AutomationEnvelope struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	TemplateID  string    `json:"template_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// SessionResponse is the render surface of a session plus the notifications
// raised since the previous response.
type SessionResponse struct {
	ID            string                `json:"id"`
	CreatedAt     time.Time             `json:"created_at"`
	Automation    AutomationEnvelope    `json:"automation"`
	View          canvas.View           `json:"view"`
	Issues        []graph.Issue         `json:"issues,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

// SessionSummary is a session entry in listings.
type SessionSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	AutomationID string    `json:"automation_id,omitempty"`
	Name         string    `json:"name,omitempty"`
	BlockCount   int       `json:"block_count"`
}

// TemplateSummary lists a template without its blocks.
type TemplateSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BlockCount  int    `json:"block_count"`
}

// PointerResponse carries the dragged position when a move changed it.
type PointerResponse struct {
	Moved    bool             `json:"moved"`
	Position *models.Position `json:"position,omitempty"`
	SessionResponse
}

// NewSessionResponse drains the session notifications into a response.
func NewSessionResponse(session *services.Session, issues []graph.Issue) SessionResponse {
	automation := session.Automation()

	return SessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Automation: AutomationEnvelope{
			ID:          automation.ID,
			Name:        automation.Name,
			Description: automation.Description,
			TemplateID:  automation.TemplateID,
			Owner:       automation.Owner,
			CreatedAt:   automation.CreatedAt,
			UpdatedAt:   automation.UpdatedAt,
		},
		View:          session.Controller().View(),
		Issues:        issues,
		Notifications: session.Notifications(),
	}
}

func NewSessionSummary(session *services.Session) SessionSummary {
	automation := session.Automation()

	return SessionSummary{
		ID:           session.ID,
		CreatedAt:    session.CreatedAt,
		AutomationID: automation.ID,
		Name:         automation.Name,
		BlockCount:   session.Controller().Store().Len(),
	}
}

func NewTemplateSummary(template *models.AutomationTemplate) TemplateSummary {
	return TemplateSummary{
		ID:          template.ID,
		Name:        template.Name,
		Description: template.Description,
		BlockCount:  len(template.Blocks),
	}
}
