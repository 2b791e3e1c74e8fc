package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type mockLessonReader struct {
	lessons    []models.LessonDetail
	lastFilter models.LessonFilter
}

func (m *mockLessonReader) ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	m.lastFilter = filter
	return m.lessons, nil
}

func (m *mockLessonReader) FindDetail(ctx context.Context, id int64) (*models.LessonDetail, error) {
	for _, l := range m.lessons {
		if l.ID == id {
			copied := l
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestLessonListScopesByRole(t *testing.T) {
	repo := &mockLessonReader{}
	svc := NewLessonService(repo, zap.NewNop())
	ctx := context.Background()

	other := teacherJohn
	_, err := svc.List(ctx, calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, models.LessonFilter{TeacherID: &other})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.TeacherID)
	assert.Equal(t, teacherJane, *repo.lastFilter.TeacherID)

	_, err = svc.List(ctx, calendar.Viewer{UserID: studentAna, Role: models.RoleStudent}, models.LessonFilter{})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.StudentID)
	assert.Equal(t, studentAna, *repo.lastFilter.StudentID)

	lessons, err := svc.List(ctx, calendar.Viewer{UserID: 30, Role: models.RoleAccountant}, models.LessonFilter{})
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.TeacherID)
	assert.NotNil(t, lessons)
}

func TestLessonListRejectsInvertedRange(t *testing.T) {
	svc := NewLessonService(&mockLessonReader{}, zap.NewNop())
	from, to := at(12, 0), at(10, 0)

	_, err := svc.List(context.Background(), calendar.Viewer{UserID: managerMia, Role: models.RoleManager}, models.LessonFilter{From: &from, To: &to})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLessonGet(t *testing.T) {
	repo := &mockLessonReader{lessons: []models.LessonDetail{{Lesson: janeLesson(5, at(10, 0), at(11, 0))}}}
	svc := NewLessonService(repo, zap.NewNop())
	ctx := context.Background()

	lesson, err := svc.Get(ctx, calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), lesson.ID)

	_, err = svc.Get(ctx, calendar.Viewer{UserID: teacherJohn, Role: models.RoleTeacher}, 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, calendar.Viewer{UserID: studentBo, Role: models.RoleStudent}, 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, calendar.Viewer{UserID: managerMia, Role: models.RoleManager}, 6)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
