package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type lessonLister interface {
	ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
}

// SalaryService computes teacher pay and posts no-show credits.
type SalaryService struct {
	users    calendarUserReader
	lessons  lessonLister
	payments paymentRepository
	audit    auditRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewSalaryService constructs a SalaryService.
func NewSalaryService(users calendarUserReader, lessons lessonLister, payments paymentRepository, audit auditRecorder, logger *zap.Logger) *SalaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalaryService{users: users, lessons: lessons, payments: payments, audit: audit, logger: logger, now: time.Now}
}

// Report sums given lessons starting in [from, to) per teacher. It never writes;
// no-show-teacher lessons without a credit are listed as pending.
func (s *SalaryService) Report(ctx context.Context, from, to time.Time) (*models.SalaryReport, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teachers")
	}
	lessons, err := s.lessons.ListDetailed(ctx, models.LessonFilter{From: &from, To: &to, StartOnly: true})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load lessons")
	}
	kind := models.PaymentKindNoShowCredit
	credits, err := s.payments.List(ctx, models.PaymentFilter{Kind: &kind})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load no-show credits")
	}
	credited := make(map[int64]struct{}, len(credits))
	for _, c := range credits {
		if c.LessonID != nil {
			credited[*c.LessonID] = struct{}{}
		}
	}

	report := &models.SalaryReport{From: from, To: to, Lines: make([]models.SalaryLine, 0, len(teachers))}
	index := make(map[int64]int, len(teachers))
	for _, t := range teachers {
		index[t.ID] = len(report.Lines)
		report.Lines = append(report.Lines, models.SalaryLine{
			TeacherID:       t.ID,
			TeacherName:     t.FullName(),
			HourlyRateCents: t.HourlyRateCents,
			PendingNoShows:  []int64{},
		})
	}

	for _, l := range lessons {
		i, ok := index[l.TeacherID]
		if !ok {
			continue
		}
		line := &report.Lines[i]
		switch l.ClassStatus {
		case models.ClassStatusGiven:
			line.GivenLessons++
			line.GivenMinutes += lessonMinutes(l.Lesson)
		case models.ClassStatusNoShowTeacher:
			if _, done := credited[l.ID]; !done {
				line.PendingNoShows = append(line.PendingNoShows, l.ID)
			}
		}
	}
	for i := range report.Lines {
		line := &report.Lines[i]
		line.AmountCents = payFor(line.GivenMinutes, line.HourlyRateCents)
		report.Total += line.AmountCents
	}
	return report, nil
}

// PostNoShowAdjustments posts one no_show_credit payment per no-show-teacher
// lesson starting in [from, to). Lessons already credited are skipped, so posting the
// same period twice writes nothing new.
func (s *SalaryService) PostNoShowAdjustments(ctx context.Context, from, to time.Time, actorID int64, meta models.RequestMeta) (*dto.AdjustmentResponse, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	status := models.ClassStatusNoShowTeacher
	lessons, err := s.lessons.ListDetailed(ctx, models.LessonFilter{From: &from, To: &to, StartOnly: true, ClassStatus: &status})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load lessons")
	}
	resp := &dto.AdjustmentResponse{IDs: []int64{}}
	if len(lessons) == 0 {
		return resp, nil
	}

	teacherIDs := make([]int64, 0, len(lessons))
	for _, l := range lessons {
		teacherIDs = append(teacherIDs, l.TeacherID)
	}
	teachers, err := s.users.FindByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teachers")
	}

	postedAt := s.now().UTC()
	for _, l := range lessons {
		studentID, teacherID, lessonID := l.StudentID, l.TeacherID, l.ID
		payment := &models.Payment{
			StudentID:   &studentID,
			TeacherID:   &teacherID,
			LessonID:    &lessonID,
			Kind:        models.PaymentKindNoShowCredit,
			AmountCents: payFor(lessonMinutes(l.Lesson), teachers[teacherID].HourlyRateCents),
			Note:        fmt.Sprintf("teacher no-show on %s", l.StartAt.UTC().Format("2006-01-02 15:04")),
			PaidAt:      postedAt,
		}
		created, err := s.payments.CreateNoShowCredit(ctx, payment)
		if err != nil {
			return resp, appErrors.Store(err, fmt.Sprintf("failed to post credit for lesson %d", lessonID))
		}
		if !created {
			resp.Skipped++
			continue
		}
		resp.Posted++
		resp.IDs = append(resp.IDs, payment.ID)
	}

	s.logger.Info("no-show adjustments posted",
		zap.Int("posted", resp.Posted),
		zap.Int("skipped", resp.Skipped),
		zap.Int64("actor_id", actorID))
	if s.audit != nil && resp.Posted > 0 {
		newValues, _ := json.Marshal(resp)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:    &actorID,
			Action:    models.AuditActionAdjustmentPost,
			Resource:  "payments",
			NewValues: newValues,
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record adjustment audit log", zap.Error(err))
		}
	}
	return resp, nil
}

func lessonMinutes(l models.Lesson) int {
	return int(l.EndAt.Sub(l.StartAt) / time.Minute)
}

// payFor rounds to the nearest cent.
func payFor(minutes int, hourlyRateCents int64) int64 {
	return (int64(minutes)*hourlyRateCents + 30) / 60
}
