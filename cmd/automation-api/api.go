// Package main provides the automation editor API server.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/eventbus"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/services"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/web"
)

type API struct {
	logger   *slog.Logger
	sessions *services.Sessions
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, sessions *services.Sessions) *API {
	return &API{
		logger:   logger,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.sessions, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := a.sessions.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Automation Editor API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

// auditEvents logs the saved automations and notifications flowing on the bus.
func auditEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	err := bus.Handle(events.AutomationSavedEvent, func(ctx context.Context, event events.Event) error {
		if saved, ok := event.(*events.AutomationSaved); ok {
			logger.InfoContext(ctx, "Automation saved",
				"session_id", saved.SessionID,
				"automation_id", saved.AutomationID,
				"block_count", saved.BlockCount)
		}

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.NotificationEmittedEvent, func(ctx context.Context, event events.Event) error {
		if emitted, ok := event.(*events.NotificationEmitted); ok {
			logger.DebugContext(ctx, "Notification emitted",
				"session_id", emitted.SessionID,
				"level", emitted.Level,
				"message", emitted.Message)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}
