package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/pkg/cache"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

const (
	calendarCachePrefix = "calendar"
	defaultBatchLimit   = 8
)

var calendarSourceKey = cache.Key(calendarCachePrefix, "source")

// calendarInvalidation matches every cached calendar payload.
var calendarInvalidation = cache.Key(calendarCachePrefix, "*")

type calendarUserReader interface {
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

type calendarLessonStore interface {
	ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Lesson, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Patch(ctx context.Context, id int64, patch models.LessonPatch) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

type availabilityReader interface {
	List(ctx context.Context, teacherID *int64) ([]models.AvailabilityWindow, error)
}

type capabilityChecker interface {
	Require(ctx context.Context, role models.Role, menuPath string, capability models.Capability) error
}

// CalendarConfig tunes CalendarService.
type CalendarConfig struct {
	CacheTTL         time.Duration
	BatchConcurrency int
}

// CalendarService builds the unified calendar view and applies sync batches.
type CalendarService struct {
	users        calendarUserReader
	lessons      calendarLessonStore
	availability availabilityReader
	permissions  capabilityChecker
	cache        *CacheService
	metrics      *MetricsService
	audit        auditRecorder
	logger       *zap.Logger
	config       CalendarConfig
}

// NewCalendarService constructs the service. cache, metrics and audit may be nil.
func NewCalendarService(
	users calendarUserReader,
	lessons calendarLessonStore,
	availability availabilityReader,
	permissions capabilityChecker,
	cacheSvc *CacheService,
	metrics *MetricsService,
	audit auditRecorder,
	logger *zap.Logger,
	config CalendarConfig,
) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = defaultBatchLimit
	}
	return &CalendarService{
		users:        users,
		lessons:      lessons,
		availability: availability,
		permissions:  permissions,
		cache:        cacheSvc,
		metrics:      metrics,
		audit:        audit,
		logger:       logger,
		config:       config,
	}
}

// LoadUnifiedView returns the resources, events and time ranges the viewer may see.
func (s *CalendarService) LoadUnifiedView(ctx context.Context, viewer calendar.Viewer) (calendar.View, error) {
	src, err := s.loadSource(ctx)
	if err != nil {
		return calendar.View{}, err
	}
	return calendar.Project(calendar.Visible(src, viewer)), nil
}

func (s *CalendarService) loadSource(ctx context.Context) (calendar.Source, error) {
	var src calendar.Source
	if s.cache.Get(ctx, calendarSourceKey, &src) {
		return src, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teachers, err := s.users.ListByRole(gctx, models.RoleTeacher)
		if err != nil {
			return appErrors.Store(err, "failed to load teachers")
		}
		src.Teachers = teachers
		return nil
	})
	g.Go(func() error {
		lessons, err := s.lessons.ListDetailed(gctx, models.LessonFilter{})
		if err != nil {
			return appErrors.Store(err, "failed to load lessons")
		}
		src.Lessons = lessons
		return nil
	})
	g.Go(func() error {
		windows, err := s.availability.List(gctx, nil)
		if err != nil {
			return appErrors.Store(err, "failed to load availability")
		}
		src.Windows = windows
		return nil
	})
	if err := g.Wait(); err != nil {
		return calendar.Source{}, err
	}

	s.cache.Set(ctx, calendarSourceKey, src, s.config.CacheTTL)
	return src, nil
}

// CheckEditable reports whether viewer may edit the stored lesson. A nil error
// means editable.
func (s *CalendarService) CheckEditable(ctx context.Context, viewer calendar.Viewer, lessonID int64) error {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %d not found", lessonID))
		}
		return appErrors.Store(err, "failed to load lesson")
	}

	var windows []models.AvailabilityWindow
	if viewer.Role.IsStaff() {
		teacherID := lesson.TeacherID
		windows, err = s.availability.List(ctx, &teacherID)
		if err != nil {
			return appErrors.Store(err, "failed to load availability")
		}
	}
	return checkEditable(viewer, *lesson, windows)
}

// checkEditable applies the edit gate. windows must hold the lesson teacher's
// availability when the viewer is staff.
func checkEditable(viewer calendar.Viewer, lesson models.Lesson, windows []models.AvailabilityWindow) error {
	switch {
	case viewer.Role.IsStaff():
		if !calendar.LessonWithinAvailability(lesson, windows) {
			return appErrors.Clone(appErrors.ErrForbidden, "lesson is outside the teacher's availability")
		}
		return nil
	case viewer.Role == models.RoleTeacher:
		if lesson.TeacherID != viewer.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "teachers can only edit their own lessons")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot edit lessons")
	}
}

// ReconcileBatch validates every operation, then applies creates and patches
// concurrently and deletes in one statement. Nothing is written when
// validation fails. A write failure is returned after the remaining writes
// finish; their effects are kept and the returned Result maps the lessons that
// were created.
func (s *CalendarService) ReconcileBatch(ctx context.Context, viewer calendar.Viewer, batch calendar.Batch) (calendar.Result, error) {
	if batch.Empty() {
		return calendar.Result{}, nil
	}
	started := time.Now()
	creates, patches, deletes := batch.Split()

	if err := s.requireCapabilities(ctx, viewer.Role, len(creates), len(patches), len(deletes)); err != nil {
		return calendar.Result{}, err
	}
	if err := s.validateCreates(ctx, viewer, creates); err != nil {
		return calendar.Result{}, err
	}
	if err := s.gateEdits(ctx, viewer, patches, deletes); err != nil {
		return calendar.Result{}, err
	}

	createdIDs := make([]int64, len(creates))
	var g errgroup.Group
	g.SetLimit(s.config.BatchConcurrency)

	for i := range creates {
		i := i
		g.Go(func() error {
			lesson := creates[i].Lesson
			if err := s.lessons.Create(ctx, &lesson); err != nil {
				s.metrics.RecordBatchOp(calendar.OpCreate, OutcomeFailure, 1)
				return appErrors.Store(err, "failed to create lesson")
			}
			createdIDs[i] = lesson.ID
			s.metrics.RecordBatchOp(calendar.OpCreate, OutcomeSuccess, 1)
			return nil
		})
	}
	for _, p := range patches {
		p := p
		g.Go(func() error {
			if err := s.lessons.Patch(ctx, p.ID, p.Patch); err != nil {
				s.metrics.RecordBatchOp(calendar.OpPatch, OutcomeFailure, 1)
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %d not found", p.ID))
				}
				return appErrors.Store(err, fmt.Sprintf("failed to update lesson %d", p.ID))
			}
			s.metrics.RecordBatchOp(calendar.OpPatch, OutcomeSuccess, 1)
			return nil
		})
	}
	if len(deletes) > 0 {
		g.Go(func() error {
			removed, err := s.lessons.DeleteMany(ctx, deletes)
			if err != nil {
				s.metrics.RecordBatchOp(calendar.OpDelete, OutcomeFailure, len(deletes))
				return appErrors.Store(err, "failed to delete lessons")
			}
			s.metrics.RecordBatchOp(calendar.OpDelete, OutcomeSuccess, int(removed))
			return nil
		})
	}

	err := g.Wait()
	s.cache.Invalidate(ctx, calendarInvalidation)
	s.metrics.ObserveBatch(time.Since(started))

	result := calendar.Result{}
	for i, c := range creates {
		if createdIDs[i] == 0 {
			continue
		}
		if c.PhantomID != "" {
			result.Events = append(result.Events, calendar.IDMapping{PhantomID: c.PhantomID, ID: createdIDs[i]})
		}
		if c.AssignmentPhantomID != "" {
			result.Assignments = append(result.Assignments, calendar.IDMapping{PhantomID: c.AssignmentPhantomID, ID: createdIDs[i]})
		}
	}
	s.recordSync(ctx, viewer, len(creates), len(patches), len(deletes), err)

	if err != nil {
		s.logger.Error("calendar batch partially applied",
			zap.Int64("user_id", viewer.UserID),
			zap.Int("created", len(result.Events)),
			zap.Error(err))
		return result, err
	}
	return result, nil
}

func (s *CalendarService) requireCapabilities(ctx context.Context, role models.Role, creates, patches, deletes int) error {
	checks := []struct {
		n          int
		capability models.Capability
	}{
		{creates, models.CapabilityCreate},
		{patches, models.CapabilityUpdate},
		{deletes, models.CapabilityDelete},
	}
	for _, c := range checks {
		if c.n == 0 {
			continue
		}
		if err := s.permissions.Require(ctx, role, MenuCalendar, c.capability); err != nil {
			return err
		}
	}
	return nil
}

// validateCreates checks every proposed lesson and resolves its participants.
func (s *CalendarService) validateCreates(ctx context.Context, viewer calendar.Viewer, creates []calendar.CreateLesson) error {
	if len(creates) == 0 {
		return nil
	}
	var refs []participantRef
	for _, c := range creates {
		if err := c.Validate(); err != nil {
			return err
		}
		if viewer.Role == models.RoleTeacher && c.Lesson.TeacherID != viewer.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "teachers can only schedule their own lessons")
		}
		refs = append(refs,
			participantRef{id: c.Lesson.StudentID, role: models.RoleStudent},
			participantRef{id: c.Lesson.TeacherID, role: models.RoleTeacher})
	}
	return s.resolveParticipants(ctx, refs)
}

type participantRef struct {
	id   int64
	role models.Role
}

func (s *CalendarService) resolveParticipants(ctx context.Context, refs []participantRef) error {
	return resolveUsers(ctx, s.users, refs)
}

// resolveUsers checks that every referenced user exists and holds the
// expected role, with one lookup for all of them.
func resolveUsers(ctx context.Context, users calendarUserReader, refs []participantRef) error {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(refs))
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.id]; ok {
			continue
		}
		seen[r.id] = struct{}{}
		ids = append(ids, r.id)
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return appErrors.Store(err, "failed to load referenced users")
	}
	for _, r := range refs {
		u, ok := found[r.id]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", r.role, r.id))
		}
		if u.Role != r.role {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user %d is not a %s", r.id, r.role))
		}
	}
	return nil
}

// gateEdits loads the lessons touched by patches and deletes and applies the
// edit gate to each, plus the merged-lesson checks for patches.
func (s *CalendarService) gateEdits(ctx context.Context, viewer calendar.Viewer, patches []calendar.PatchLesson, deletes []int64) error {
	if len(patches) == 0 && len(deletes) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(patches)+len(deletes))
	for _, p := range patches {
		ids = append(ids, p.ID)
	}
	ids = append(ids, deletes...)

	stored, err := s.lessons.FindByIDs(ctx, ids)
	if err != nil {
		return appErrors.Store(err, "failed to load lessons")
	}
	byID := make(map[int64]models.Lesson, len(stored))
	for _, l := range stored {
		byID[l.ID] = l
	}

	var windowsByTeacher map[int64][]models.AvailabilityWindow
	if viewer.Role.IsStaff() {
		windows, err := s.availability.List(ctx, nil)
		if err != nil {
			return appErrors.Store(err, "failed to load availability")
		}
		windowsByTeacher = make(map[int64][]models.AvailabilityWindow)
		for _, w := range windows {
			windowsByTeacher[w.TeacherID] = append(windowsByTeacher[w.TeacherID], w)
		}
	}

	var refs []participantRef
	for _, p := range patches {
		lesson, ok := byID[p.ID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %d not found", p.ID))
		}
		if err := checkEditable(viewer, lesson, windowsByTeacher[lesson.TeacherID]); err != nil {
			return err
		}
		merged := p.Patch.Apply(lesson)
		if !merged.EndAt.After(merged.StartAt) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("lesson %d: end must be after start", p.ID))
		}
		if viewer.Role == models.RoleTeacher && merged.TeacherID != viewer.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "teachers cannot hand lessons to another teacher")
		}
		if p.Patch.StudentID != nil {
			refs = append(refs, participantRef{id: *p.Patch.StudentID, role: models.RoleStudent})
		}
		if p.Patch.TeacherID != nil {
			refs = append(refs, participantRef{id: *p.Patch.TeacherID, role: models.RoleTeacher})
		}
	}
	for _, id := range deletes {
		lesson, ok := byID[id]
		if !ok {
			continue
		}
		if err := checkEditable(viewer, lesson, windowsByTeacher[lesson.TeacherID]); err != nil {
			return err
		}
	}
	return s.resolveParticipants(ctx, refs)
}

func (s *CalendarService) recordSync(ctx context.Context, viewer calendar.Viewer, creates, patches, deletes int, failure error) {
	if s.audit == nil {
		return
	}
	summary := map[string]interface{}{"created": creates, "updated": patches, "deleted": deletes}
	if failure != nil {
		summary["error"] = failure.Error()
	}
	payload, _ := json.Marshal(summary)
	userID := viewer.UserID
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    &userID,
		Action:    models.AuditActionCalendarSync,
		Resource:  "calendar",
		NewValues: payload,
	}); err != nil {
		s.logger.Warn("failed to record calendar sync audit log", zap.Error(err))
	}
}

// Duration answers the class-type duration lookup.
func (s *CalendarService) Duration(classType string, start *time.Time) dto.DurationResponse {
	resp := dto.DurationResponse{ClassType: classType, Minutes: calendar.DefaultDurationMinutes(classType)}
	if start != nil {
		end := calendar.SuggestedEnd(*start, classType).Format(time.RFC3339)
		resp.SuggestedEnd = &end
	}
	return resp
}

// InvalidateCache drops the cached calendar source.
func (s *CalendarService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, calendarInvalidation)
}
