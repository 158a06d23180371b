package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/services"
)

type APIHandlers struct {
	sessions  *services.Sessions
	validator *validator.Validate
}

func NewAPIHandlers(sessions *services.Sessions, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		sessions:  sessions,
		validator: validator,
	}
}

// Register mounts the editor routes on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/palette", h.GetPalette)

	t := router.Group("/templates")
	t.Get("/", h.GetTemplates)
	t.Get("/:id", h.GetTemplate)

	a := router.Group("/automations")
	a.Get("/", h.GetAutomations)
	a.Get("/:id", h.GetAutomation)
	a.Delete("/:id", h.DeleteAutomation)
	a.Post("/:id/open", h.OpenAutomation)

	s := router.Group("/sessions")
	s.Get("/", h.GetSessions)
	s.Post("/", h.CreateSession)
	s.Get("/:id", h.GetSession)
	s.Delete("/:id", h.CloseSession)
	s.Put("/:id/viewport", h.SetViewport)
	s.Post("/:id/pointer", h.Pointer)
	s.Post("/:id/cancel", h.CancelGesture)

	s.Post("/:id/blocks", h.AddBlock)
	s.Put("/:id/blocks/:blockId/position", h.MoveBlock)
	s.Put("/:id/blocks/:blockId/config", h.ConfigureBlock)
	s.Delete("/:id/blocks/:blockId", h.DeleteBlock)

	s.Post("/:id/connections", h.Connect)
	s.Delete("/:id/connections/:sourceId/:targetId", h.Disconnect)
	s.Post("/:id/connection-drawing", h.StartConnection)
	s.Post("/:id/connection-drawing/complete", h.CompleteConnection)
	s.Delete("/:id/connection-drawing", h.CancelGesture)

	s.Post("/:id/template-picker", h.OpenTemplatePicker)
	s.Delete("/:id/template-picker", h.CloseTemplatePicker)
	s.Post("/:id/template", h.ApplyTemplate)

	s.Post("/:id/save", h.SaveSession)
	s.Get("/:id/export", h.ExportSession)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.sessions.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Automation editor API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Automation editor API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetPalette(c fiber.Ctx) error {
	return c.JSON(models.Palette())
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates, err := h.sessions.Templates(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	summaries := make([]TemplateSummary, 0, len(templates))
	for _, template := range templates {
		summaries = append(summaries, NewTemplateSummary(template))
	}

	return c.JSON(summaries)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	template, err := h.sessions.Template(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	automations, err := h.sessions.Automations(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(automations)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	automation, err := h.sessions.Automation(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	err := h.sessions.DeleteAutomation(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) OpenAutomation(c fiber.Ctx) error {
	session, issues, err := h.sessions.Open(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewSessionResponse(session, issues))
}

func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	sessions := h.sessions.List()

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, NewSessionSummary(session))
	}

	return c.JSON(summaries)
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, issues, err := h.sessions.Create(c.Context(), req.TemplateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewSessionResponse(session, issues))
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	err := h.sessions.Close(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetViewport(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ViewportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if req.Mounted {
		session.Controller().SetViewport(req.Viewport)
	} else {
		session.Controller().SetViewport(nil)
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) Pointer(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req PointerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Event.Hit.Kind == "" {
		req.Event.Hit.Kind = canvas.HitCanvas
	}

	response := PointerResponse{}
	controller := session.Controller()

	switch req.Phase {
	case "down":
		err = controller.PointerDown(req.Event)
	case "move":
		if position, moved := controller.PointerMove(req.Event); moved {
			response.Moved = true
			response.Position = &position
		}
	case "up":
		err = controller.PointerUp(req.Event)
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	response.SessionResponse = NewSessionResponse(session, nil)

	return c.JSON(response)
}

func (h *APIHandlers) CancelGesture(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	session.Controller().Cancel()

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) AddBlock(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	block, err := session.Controller().AddBlock(models.BlockType(req.Type), req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"block":   block,
		"session": NewSessionResponse(session, nil),
	})
}

func (h *APIHandlers) MoveBlock(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req MoveBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	_, moved, err := session.Controller().MoveBlock(c.Params("blockId"), req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	if !moved {
		return notFound(c, "Block not found")
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) ConfigureBlock(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ConfigureBlockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	store := session.Controller().Store()
	blockID := c.Params("blockId")

	block, ok := store.Block(blockID)
	if !ok {
		return notFound(c, "Block not found")
	}

	var found bool

	if req.Merge {
		found, err = store.MergeBlockConfig(blockID, req.Config)
	} else {
		config, decodeErr := models.DecodeConfigMap(block.Type, req.Config)
		if decodeErr != nil {
			return badRequest(c, "Invalid config: "+decodeErr.Error())
		}

		found, err = store.ConfigureBlock(blockID, config)
	}

	if err != nil {
		if services.IsValidationError(err) {
			return handleServiceError(c, err)
		}

		return badRequest(c, "Invalid config: "+err.Error())
	}

	if !found {
		return notFound(c, "Block not found")
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) DeleteBlock(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if !session.Controller().DeleteBlock(c.Params("blockId")) {
		return notFound(c, "Block not found")
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err = session.Controller().Store().Connect(req.SourceID, req.TargetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) Disconnect(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if !session.Controller().Store().Disconnect(c.Params("sourceId"), c.Params("targetId")) {
		return notFound(c, "Connection not found")
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) StartConnection(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req StartConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err = session.Controller().StartConnection(req.BlockID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) CompleteConnection(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req CompleteConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err = session.Controller().CompleteConnection(req.TargetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) OpenTemplatePicker(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	session.Controller().OpenTemplatePicker()

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) CloseTemplatePicker(c fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	session.Controller().CloseTemplatePicker()

	return c.JSON(NewSessionResponse(session, nil))
}

func (h *APIHandlers) ApplyTemplate(c fiber.Ctx) error {
	var req ApplyTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	issues, err := h.sessions.ApplyTemplate(c.Context(), c.Params("id"), req.TemplateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewSessionResponse(session, issues))
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	var req services.SaveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	automation, err := h.sessions.Save(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) ExportSession(c fiber.Ctx) error {
	flow, err := h.sessions.Export(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}
