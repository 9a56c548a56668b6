package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

var exportJobRowColumns = []string{"id", "type", "format", "params", "status", "progress", "result_url", "created_by", "error_message", "created_at", "updated_at", "finished_at"}

func TestExportJobRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec("INSERT INTO export_jobs").
		WithArgs(sqlmock.AnyArg(), models.ExportTypeSeating, models.ExportFormatXLSX, sqlmock.AnyArg(), models.ExportStatusQueued, 0, nil, "admin-1", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{Type: models.ExportTypeSeating, Format: models.ExportFormatXLSX, CreatedBy: "admin-1", Params: models.ExportJobParams{RunID: "run-1"}}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	rows := sqlmock.NewRows(exportJobRowColumns).
		AddRow("job-1", "registrations", "csv", []byte(`{"county":"Cluj"}`), "FINISHED", 100, "/exports/download/x", "admin-1", nil, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE id = $1")).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportTypeRegistrations, job.Type)
	assert.Equal(t, "Cluj", job.Params.County)
	require.NotNil(t, job.ResultURL)
	assert.NotNil(t, job.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	status := models.ExportStatusProcessing
	progress := 10
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET updated_at = $1, status = $2, progress = $3 WHERE id = $4")).
		WithArgs(sqlmock.AnyArg(), status, progress, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{Status: &status, Progress: &progress}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdateWithoutChangesIsNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	cutoff := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1")).
		WithArgs(cutoff, 50).
		WillReturnRows(sqlmock.NewRows(exportJobRowColumns).
			AddRow("job-2", "seating", "pdf", nil, "FINISHED", 100, nil, "admin-1", nil, time.Now(), time.Now(), time.Now()))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.ExportFormatPDF, jobs[0].Format)
	assert.NoError(t, mock.ExpectationsWereMet())
}
