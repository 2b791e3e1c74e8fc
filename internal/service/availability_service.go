package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, teacherID *int64) ([]models.AvailabilityWindow, error)
	FindByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error)
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	Delete(ctx context.Context, id int64) error
}

// AvailabilityService manages teacher availability windows.
type AvailabilityService struct {
	repo      availabilityRepository
	users     calendarUserReader
	cache     *CacheService
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService and registers the
// window rule on validate.
func NewAvailabilityService(repo availabilityRepository, users calendarUserReader, cacheSvc *CacheService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterStructValidation(availabilityWindowRule, dto.CreateAvailabilityRequest{})
	return &AvailabilityService{repo: repo, users: users, cache: cacheSvc, audit: audit, validator: validate, logger: logger}
}

func availabilityWindowRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.CreateAvailabilityRequest)
	switch {
	case req.StartDate.IsZero():
		sl.ReportError(req.StartDate, "StartDate", "StartDate", "required", "")
	case req.EndDate.IsZero():
		sl.ReportError(req.EndDate, "EndDate", "EndDate", "required", "")
	case !req.EndDate.After(req.StartDate.Time):
		sl.ReportError(req.EndDate, "EndDate", "EndDate", "gtfield", "StartDate")
	}
}

// List returns windows visible to viewer. Teachers always get their own
// windows regardless of teacherID.
func (s *AvailabilityService) List(ctx context.Context, viewer calendar.Viewer, teacherID *int64) ([]models.AvailabilityWindow, error) {
	switch {
	case viewer.Role.IsStaff():
	case viewer.Role == models.RoleTeacher:
		own := viewer.UserID
		teacherID = &own
	default:
		return []models.AvailabilityWindow{}, nil
	}
	windows, err := s.repo.List(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list availability")
	}
	if windows == nil {
		windows = []models.AvailabilityWindow{}
	}
	return windows, nil
}

// Create declares a new window. Teachers may only declare their own; staff may
// declare on behalf of any teacher.
func (s *AvailabilityService) Create(ctx context.Context, viewer calendar.Viewer, req dto.CreateAvailabilityRequest, meta models.RequestMeta) (*models.AvailabilityWindow, error) {
	teacherID := req.TeacherID
	if teacherID == 0 && viewer.Role == models.RoleTeacher {
		teacherID = viewer.UserID
	}
	if err := canManageAvailability(viewer, teacherID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if _, err := calendar.ParseRule(req.RecurrenceRule); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.requireTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	window := &models.AvailabilityWindow{
		TeacherID:      teacherID,
		StartAt:        req.StartDate.UTC(),
		EndAt:          req.EndDate.UTC(),
		RecurrenceRule: req.RecurrenceRule,
	}
	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Store(err, "failed to create availability")
	}
	s.cache.Invalidate(ctx, calendarInvalidation)
	s.record(ctx, viewer, meta, window.ID, nil, window)
	return window, nil
}

// Delete removes a window. Only its teacher or staff may delete it.
func (s *AvailabilityService) Delete(ctx context.Context, viewer calendar.Viewer, id int64, meta models.RequestMeta) error {
	window, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return appErrors.Store(err, "failed to load availability")
	}
	if err := canManageAvailability(viewer, window.TeacherID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return appErrors.Store(err, "failed to delete availability")
	}
	s.cache.Invalidate(ctx, calendarInvalidation)
	s.record(ctx, viewer, meta, id, window, nil)
	return nil
}

func canManageAvailability(viewer calendar.Viewer, teacherID int64) error {
	switch {
	case viewer.Role.IsStaff():
		return nil
	case viewer.Role == models.RoleTeacher && viewer.UserID == teacherID:
		return nil
	case viewer.Role == models.RoleTeacher:
		return appErrors.Clone(appErrors.ErrForbidden, "teachers can only manage their own availability")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot manage availability")
	}
}

func (s *AvailabilityService) requireTeacher(ctx context.Context, teacherID int64) error {
	if teacherID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "teacher_id is required")
	}
	return resolveUsers(ctx, s.users, []participantRef{{id: teacherID, role: models.RoleTeacher}})
}

func (s *AvailabilityService) record(ctx context.Context, viewer calendar.Viewer, meta models.RequestMeta, id int64, before, after *models.AvailabilityWindow) {
	if s.audit == nil {
		return
	}
	var oldValues, newValues []byte
	if before != nil {
		oldValues, _ = json.Marshal(before)
	}
	if after != nil {
		newValues, _ = json.Marshal(after)
	}
	userID := viewer.UserID
	resourceID := strconv.FormatInt(id, 10)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionAvailability,
		Resource:   "availability",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record availability audit log", zap.Error(err))
	}
}
