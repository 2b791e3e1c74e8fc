package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type lessonReader interface {
	ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
	FindDetail(ctx context.Context, id int64) (*models.LessonDetail, error)
}

// LessonService serves read access to lessons outside the calendar.
type LessonService struct {
	repo   lessonReader
	logger *zap.Logger
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonReader, logger *zap.Logger) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, logger: logger}
}

// List returns lessons matching filter, narrowed to the viewer's own rows
// for teachers and students.
func (s *LessonService) List(ctx context.Context, viewer calendar.Viewer, filter models.LessonFilter) ([]models.LessonDetail, error) {
	filter = scopeLessonFilter(viewer, filter)
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	lessons, err := s.repo.ListDetailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list lessons")
	}
	if lessons == nil {
		lessons = []models.LessonDetail{}
	}
	return lessons, nil
}

// Get returns one lesson the viewer may read.
func (s *LessonService) Get(ctx context.Context, viewer calendar.Viewer, id int64) (*models.LessonDetail, error) {
	lesson, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Store(err, "failed to load lesson")
	}
	switch viewer.Role {
	case models.RoleTeacher:
		if lesson.TeacherID != viewer.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "lesson belongs to another teacher")
		}
	case models.RoleStudent:
		if lesson.StudentID != viewer.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "lesson belongs to another student")
		}
	}
	return lesson, nil
}

func scopeLessonFilter(viewer calendar.Viewer, filter models.LessonFilter) models.LessonFilter {
	id := viewer.UserID
	switch viewer.Role {
	case models.RoleTeacher:
		filter.TeacherID = &id
	case models.RoleStudent:
		filter.StudentID = &id
	}
	return filter
}
