package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "floor", "seats", "seat_rows", "seat_cols", "created_at", "updated_at"}).
		AddRow("r-1", "Sala 10", "Etaj I", 25, 5, 5, time.Now(), time.Now()).
		AddRow("r-2", "Sala 9", "Etaj I", 25, 5, 5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, floor, seats, seat_rows, seat_cols, created_at, updated_at FROM rooms ORDER BY name ASC")).
		WillReturnRows(rows)

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 5, rooms[0].Rows)
	assert.Equal(t, 5, rooms[0].Cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateMany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Sala 18", "Etaj II", 20, 5, 4, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Sala 19", "Etaj II", 5, 3, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rooms := []models.Room{
		{Name: "Sala 18", Floor: "Etaj II", Seats: 20, Rows: 5, Cols: 4},
		{Name: "Sala 19", Floor: "Etaj II", Seats: 5, Rows: 3, Cols: 2},
	}
	require.NoError(t, repo.CreateMany(context.Background(), rooms))
	assert.NotEmpty(t, rooms[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateManyRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rooms").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []models.Room{{Name: "Sala 6", Seats: 25, Rows: 5, Cols: 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sala 6")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("sala 6").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "sala 6", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
