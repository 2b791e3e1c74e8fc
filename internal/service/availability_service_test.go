package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type mockAvailabilityRepo struct {
	windows map[int64]models.AvailabilityWindow
	nextID  int64
	listArg *int64
}

func (m *mockAvailabilityRepo) List(ctx context.Context, teacherID *int64) ([]models.AvailabilityWindow, error) {
	m.listArg = teacherID
	var out []models.AvailabilityWindow
	for _, w := range m.windows {
		if teacherID == nil || w.TeacherID == *teacherID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockAvailabilityRepo) FindByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &w, nil
}

func (m *mockAvailabilityRepo) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	m.nextID++
	window.ID = m.nextID
	m.windows[window.ID] = *window
	return nil
}

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.windows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.windows, id)
	return nil
}

func newAvailabilityFixture() (*AvailabilityService, *mockAvailabilityRepo, *memoryCache, *recordingAudit) {
	repo := &mockAvailabilityRepo{windows: map[int64]models.AvailabilityWindow{
		1: {ID: 1, TeacherID: teacherJane, StartAt: at(9, 0), EndAt: at(17, 0)},
		2: {ID: 2, TeacherID: teacherJohn, StartAt: at(13, 0), EndAt: at(15, 0)},
	}, nextID: 2}
	users := newCalendarFixture().users
	cache := &memoryCache{}
	audit := &recordingAudit{}
	svc := NewAvailabilityService(repo, users, NewCacheService(cache, nil, time.Minute, zap.NewNop(), true), audit, validator.New(), zap.NewNop())
	return svc, repo, cache, audit
}

func TestAvailabilityListScopesTeachers(t *testing.T) {
	svc, repo, _, _ := newAvailabilityFixture()
	ctx := context.Background()

	other := teacherJohn
	windows, err := svc.List(ctx, calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, &other)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, teacherJane, windows[0].TeacherID)
	require.NotNil(t, repo.listArg)
	assert.Equal(t, teacherJane, *repo.listArg)

	all, err := svc.List(ctx, calendar.Viewer{UserID: managerMia, Role: models.RoleManager}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := svc.List(ctx, calendar.Viewer{UserID: studentAna, Role: models.RoleStudent}, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAvailabilityCreateOwnWindow(t *testing.T) {
	svc, repo, cache, audit := newAvailabilityFixture()

	window, err := svc.Create(context.Background(), calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, dto.CreateAvailabilityRequest{
		StartDate:      dto.Instant{Time: at(18, 0)},
		EndDate:        dto.Instant{Time: at(20, 0)},
		RecurrenceRule: "FREQ=WEEKLY",
	}, models.RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, teacherJane, window.TeacherID)
	assert.Contains(t, repo.windows, window.ID)
	assert.Contains(t, cache.deletes, "calendar:*")
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAvailability, audit.logs[0].Action)
}

func TestAvailabilityCreateValidation(t *testing.T) {
	svc, _, _, _ := newAvailabilityFixture()
	ctx := context.Background()
	manager := calendar.Viewer{UserID: managerMia, Role: models.RoleManager}

	_, err := svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID: teacherJane,
		StartDate: dto.Instant{Time: at(12, 0)},
		EndDate:   dto.Instant{Time: at(12, 0)},
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "gtfield", fieldErrs[0].Tag())

	_, err = svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID: teacherJane,
		StartDate: dto.Instant{Time: at(12, 0)},
	}, models.RequestMeta{})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "EndDate", fieldErrs[0].Field())
	assert.Equal(t, "required", fieldErrs[0].Tag())

	_, err = svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID: -3,
		StartDate: dto.Instant{Time: at(12, 0)},
		EndDate:   dto.Instant{Time: at(13, 0)},
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID:      teacherJane,
		StartDate:      dto.Instant{Time: at(12, 0)},
		EndDate:        dto.Instant{Time: at(13, 0)},
		RecurrenceRule: "FREQ=HOURLY",
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID: studentAna,
		StartDate: dto.Instant{Time: at(12, 0)},
		EndDate:   dto.Instant{Time: at(13, 0)},
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, manager, dto.CreateAvailabilityRequest{
		TeacherID: 999,
		StartDate: dto.Instant{Time: at(12, 0)},
		EndDate:   dto.Instant{Time: at(13, 0)},
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAvailabilityCreateForOtherTeacherForbidden(t *testing.T) {
	svc, _, _, _ := newAvailabilityFixture()

	_, err := svc.Create(context.Background(), calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, dto.CreateAvailabilityRequest{
		TeacherID: teacherJohn,
		StartDate: dto.Instant{Time: at(12, 0)},
		EndDate:   dto.Instant{Time: at(13, 0)},
	}, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestAvailabilityDelete(t *testing.T) {
	svc, repo, cache, _ := newAvailabilityFixture()
	ctx := context.Background()

	err := svc.Delete(ctx, calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, 2, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Contains(t, repo.windows, int64(2))

	err = svc.Delete(ctx, calendar.Viewer{UserID: 30, Role: models.RoleAccountant}, 1, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, calendar.Viewer{UserID: teacherJane, Role: models.RoleTeacher}, 1, models.RequestMeta{}))
	assert.NotContains(t, repo.windows, int64(1))
	assert.Contains(t, cache.deletes, "calendar:*")

	err = svc.Delete(ctx, calendar.Viewer{UserID: managerMia, Role: models.RoleAdmin}, 1, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
