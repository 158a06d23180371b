//go:build integration

package web_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence/postgresql"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/services"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/templates"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/web"
)

func setupTestDB(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "test_automations",
				"POSTGRES_USER":     "test_user",
				"POSTGRES_PASSWORD": "test_pass",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test_user:test_pass@%s:%s/test_automations?sslmode=disable", host, port.Port())
}

func setupIntegrationApp(t *testing.T, dbURL string) *fiber.App {
	t.Helper()

	persistence, err := postgresql.NewPersistence(context.Background(), slog.Default(), dbURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = persistence.Close(context.Background())
	})

	catalogue, err := templates.Builtin()
	require.NoError(t, err)

	sessions := services.NewSessions(persistence, catalogue, services.WithLogger(slog.Default()))
	handlers := web.NewAPIHandlers(sessions, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	return app
}

func TestAutomationLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	app := setupIntegrationApp(t, setupTestDB(t))

	session := createSession(t, app, "qualify-by-tag")

	status, body := doJSON(t, app, http.MethodPost, "/sessions/"+session.ID+"/save",
		services.SaveRequest{Name: "Qualify VIPs", Description: "tags and routes VIP leads"})
	require.Equal(t, http.StatusOK, status, string(body))

	saved := decode[models.Automation](t, body)
	require.NotEmpty(t, saved.ID)

	status, body = doJSON(t, app, http.MethodGet, "/automations/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	stored := decode[models.Automation](t, body)
	assert.Equal(t, "Qualify VIPs", stored.Name)
	assert.Equal(t, "qualify-by-tag", stored.TemplateID)
	assert.Len(t, stored.Blocks, len(saved.Blocks))

	status, body = doJSON(t, app, http.MethodPost, "/automations/"+saved.ID+"/open", nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	opened := decode[web.SessionResponse](t, body)
	assert.Len(t, opened.View.Blocks, len(saved.Blocks))
	assert.Empty(t, opened.Issues)

	status, _ = doJSON(t, app, http.MethodDelete, "/automations/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, app, http.MethodGet, "/automations/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/automations/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
