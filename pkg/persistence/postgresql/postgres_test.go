package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence/postgresql"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/testutil"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"automation_blocks", "automations", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("automations_test"),
			postgres.WithUsername("automations"),
			postgres.WithPassword("automations"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func TestPostgres_RoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))

	template := testutil.CreateTestTemplate()
	automation := &models.Automation{Name: "Welcome", Blocks: template.Blocks, TemplateID: template.ID}

	require.NoError(t, p.SaveAutomation(ctx, automation))

	loaded, err := p.AutomationByID(ctx, automation.ID)
	require.NoError(t, err)
	assert.Equal(t, template.Blocks, loaded.Blocks)
	assert.Equal(t, template.ID, loaded.TemplateID)

	automation.Name = "Welcome v2"
	automation.Blocks = automation.Blocks[:1]
	require.NoError(t, p.SaveAutomation(ctx, automation))

	all, err := p.Automations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Welcome v2", all[0].Name)
	assert.Len(t, all[0].Blocks, 1)

	require.NoError(t, p.DeleteAutomation(ctx, automation.ID))

	_, err = p.AutomationByID(ctx, automation.ID)
	assert.True(t, persistence.IsAutomationNotFound(err))

	err = p.DeleteAutomation(ctx, automation.ID)
	assert.True(t, persistence.IsAutomationNotFound(err))
}
