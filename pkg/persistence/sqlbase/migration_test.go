package sqlbase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence/sqlbase"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	defer db.Close()

	migrations := map[int]string{
		3: "CREATE TABLE c ()",
		1: "CREATE TABLE a ()",
		2: "CREATE TABLE b ()",
	}

	manager := sqlbase.NewMigrationManager(discard, db, migrations)
	assert.Equal(t, 3, manager.LatestVersion())

	mock.MatchExpectationsInOrder(true)
	mock.ExpectExec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	for _, version := range []int{2, 3} {
		mock.ExpectBegin()
		mock.ExpectExec(migrations[version]).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations (version) VALUES ($1)").
			WithArgs(version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, manager.RunMigrations(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UpToDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := sqlbase.NewMigrationManager(discard, db, map[int]string{1: "CREATE TABLE a ()"})

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	require.NoError(t, manager.RunMigrations(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := sqlbase.NewMigrationManager(discard, db, map[int]string{1: "CREATE TABLE a ()"})

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a ()")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = manager.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute migration 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_MigrationsTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := sqlbase.NewMigrationManager(discard, db, nil)
	assert.Equal(t, 0, manager.LatestVersion())

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnError(errors.New("permission denied"))

	err = manager.RunMigrations(context.Background())
	require.ErrorContains(t, err, "permission denied")
}
