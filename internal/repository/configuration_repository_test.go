package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

var settingColumns = []string{"key", "value", "type", "description", "updated_by", "updated_at"}

func newSettingsRepo(t *testing.T) (*ConfigurationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewConfigurationRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestSettingsListByKeysExpandsInClause(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery(`FROM configurations WHERE key IN \(\$1, \$2\)`).
		WithArgs("cycle_quota", "registration_open").
		WillReturnRows(sqlmock.NewRows(settingColumns).
			AddRow("cycle_quota", "5", "INTEGER", nil, nil, time.Now()).
			AddRow("registration_open", "true", "BOOLEAN", "desc", "admin", time.Now()))

	result, err := repo.ListByKeys(context.Background(), []string{"cycle_quota", "registration_open"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, models.ConfigurationTypeInteger, result[0].Type)
	assert.Nil(t, result[0].UpdatedBy)
	assert.Equal(t, "admin", *result[1].UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsListByKeysEmptySkipsQuery(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	result, err := repo.ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsListAll(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery("FROM configurations ORDER BY key ASC").
		WillReturnRows(sqlmock.NewRows(settingColumns).
			AddRow("registration_message", "Closed", "STRING", nil, nil, time.Now()))

	result, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Closed", result[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpsertStampsTime(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("registration_open", "true", "BOOLEAN", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	setting := &models.Configuration{Key: "registration_open", Value: "true", Type: models.ConfigurationTypeBoolean, UpdatedBy: strPtr("admin")}
	require.NoError(t, repo.Upsert(context.Background(), setting))
	assert.False(t, setting.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsBulkUpsertRollsBackOnFailure(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("registration_open", "false", "BOOLEAN", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("registration_message", "See you next year", "STRING", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Configuration{
		{Key: "registration_open", Value: "false", Type: models.ConfigurationTypeBoolean, UpdatedBy: strPtr("admin")},
		{Key: "registration_message", Value: "See you next year", Type: models.ConfigurationTypeString, UpdatedBy: strPtr("admin")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registration_message")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsBulkUpsertCommits(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("cycle_quota", "6", "INTEGER", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BulkUpsert(context.Background(), []models.Configuration{
		{Key: "cycle_quota", Value: "6", Type: models.ConfigurationTypeInteger, UpdatedBy: strPtr("admin")},
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(value string) *string {
	return &value
}
