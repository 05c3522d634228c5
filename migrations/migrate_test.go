package migrations

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firstMigration = "0001_timetable_records.sql"

func newMigrationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectRecorded(mock sqlmock.Sqlmock, name string, recorded bool) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)")).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(recorded))
}

func TestUpAppliesAndRecordsPendingMigrations(t *testing.T) {
	db, mock := newMigrationMock(t)
	expectRecorded(mock, firstMigration, false)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS timetable_records")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (filename) VALUES ($1)")).
		WithArgs(firstMigration).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{firstMigration}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpSkipsRecordedMigrations(t *testing.T) {
	db, mock := newMigrationMock(t)
	expectRecorded(mock, firstMigration, true)

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpRollsBackFailedMigration(t *testing.T) {
	db, mock := newMigrationMock(t)
	expectRecorded(mock, firstMigration, false)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS timetable_records")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), firstMigration)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
