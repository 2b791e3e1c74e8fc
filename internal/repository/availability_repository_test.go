package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func TestAvailabilityListByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "teacher_id", "start_at", "end_at", "recurrence_rule", "created_at", "teacher_first_name", "teacher_last_name"}).
		AddRow(1, 7, start, start.Add(8*time.Hour), "FREQ=WEEKLY", start, "Jane", "Doe")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.teacher_id = $1 ORDER BY a.start_at ASC, a.id ASC")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	teacherID := int64(7)
	windows, err := repo.List(context.Background(), &teacherID)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Recurring())
	assert.Equal(t, "Jane", windows[0].TeacherFirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("INSERT INTO availability_windows").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	window := &models.AvailabilityWindow{TeacherID: 7, StartAt: start, EndAt: start.Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), window))
	assert.Equal(t, int64(5), window.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_windows WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
