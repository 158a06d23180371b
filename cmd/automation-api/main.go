package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/cmd"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/log"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/otelhelper"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/services"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/templates"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9091
	serviceName = "automation-api"
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Edit automation graphs over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Persistence URL (file://dir, postgres://..., redis://...)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "templates-path",
				Usage:   "Directory of template files merged over the builtin catalogue",
				Sources: cli.EnvVars("TEMPLATES_PATH"),
			},
			&cli.FloatFlag{
				Name:    "grid-size",
				Usage:   "Canvas snapping grid, 0 disables snapping",
				Value:   20,
				Sources: cli.EnvVars("GRID_SIZE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing automation editor API")

	tracer := otelhelper.NoopTracer()

	if command.Bool("otel-enabled") {
		otelTracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		tracer = otelTracer
	}

	catalogue, err := templates.Load(command.String("templates-path"))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	logger.InfoContext(ctx, "Templates loaded", "count", catalogue.Len())

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	if err := auditEvents(ctx, eventBus, log.WithModule("audit")); err != nil {
		return fmt.Errorf("failed to subscribe to editor events: %w", err)
	}

	sessions := services.NewSessions(persistence, catalogue,
		services.WithPublisher(eventBus),
		services.WithTracer(tracer),
		services.WithGridSize(command.Float("grid-size")),
		services.WithLogger(log.WithModule("sessions")),
	)

	return NewAPI(logger, sessions).Start(int(command.Int("port")))
}
