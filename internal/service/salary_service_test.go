package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type mockPaymentRepo struct {
	payments []models.Payment
	nextID   int64
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	m.nextID++
	payment.ID = m.nextID
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockPaymentRepo) CreateNoShowCredit(ctx context.Context, payment *models.Payment) (bool, error) {
	for _, p := range m.payments {
		if p.Kind == models.PaymentKindNoShowCredit && p.LessonID != nil && *p.LessonID == *payment.LessonID {
			return false, nil
		}
	}
	return true, m.Create(ctx, payment)
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if filter.Kind != nil && p.Kind != *filter.Kind {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func salaryFixture() (*SalaryService, *mockPaymentRepo, *recordingAudit) {
	f := newCalendarFixture(
		models.Lesson{ID: 1, StudentID: studentAna, TeacherID: teacherJane, StartAt: at(9, 0), EndAt: at(10, 0), ClassStatus: models.ClassStatusGiven},
		models.Lesson{ID: 2, StudentID: studentBo, TeacherID: teacherJane, StartAt: at(10, 0), EndAt: at(10, 30), ClassStatus: models.ClassStatusGiven},
		models.Lesson{ID: 3, StudentID: studentAna, TeacherID: teacherJohn, StartAt: at(13, 0), EndAt: at(14, 0), ClassStatus: models.ClassStatusNoShowTeacher},
		models.Lesson{ID: 4, StudentID: studentBo, TeacherID: teacherJohn, StartAt: at(14, 0), EndAt: at(15, 0), ClassStatus: models.ClassStatusScheduled},
	)
	jane := f.users.users[teacherJane]
	jane.HourlyRateCents = 3000
	f.users.users[teacherJane] = jane
	john := f.users.users[teacherJohn]
	john.HourlyRateCents = 2000
	f.users.users[teacherJohn] = john

	payments := &mockPaymentRepo{}
	audit := &recordingAudit{}
	svc := NewSalaryService(f.users, &filteringLessons{f.lessons}, payments, audit, zap.NewNop())
	svc.now = func() time.Time { return at(23, 0) }
	return svc, payments, audit
}

// filteringLessons applies the status and range filters the real repository
// applies in SQL.
type filteringLessons struct {
	store *fakeLessonStore
}

func (f *filteringLessons) ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	all, err := f.store.ListDetailed(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []models.LessonDetail
	for _, l := range all {
		if filter.ClassStatus != nil && l.ClassStatus != *filter.ClassStatus {
			continue
		}
		if !inLessonRange(l.Lesson, filter) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func inLessonRange(l models.Lesson, filter models.LessonFilter) bool {
	if filter.From != nil {
		if filter.StartOnly && l.StartAt.Before(*filter.From) {
			return false
		}
		if !filter.StartOnly && !l.EndAt.After(*filter.From) {
			return false
		}
	}
	return filter.To == nil || l.StartAt.Before(*filter.To)
}

func TestSalaryReportIsReadOnly(t *testing.T) {
	svc, payments, _ := salaryFixture()

	report, err := svc.Report(context.Background(), monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, payments.payments)

	lines := map[int64]models.SalaryLine{}
	for _, l := range report.Lines {
		lines[l.TeacherID] = l
	}
	assert.Equal(t, 2, lines[teacherJane].GivenLessons)
	assert.Equal(t, 90, lines[teacherJane].GivenMinutes)
	assert.Equal(t, int64(4500), lines[teacherJane].AmountCents)
	assert.Equal(t, []int64{3}, lines[teacherJohn].PendingNoShows)
	assert.Zero(t, lines[teacherJohn].AmountCents)
	assert.Equal(t, int64(4500), report.Total)
}

func TestPostNoShowAdjustmentsIsIdempotent(t *testing.T) {
	svc, payments, audit := salaryFixture()
	ctx := context.Background()
	from, to := monday, monday.AddDate(0, 0, 1)

	first, err := svc.PostNoShowAdjustments(ctx, from, to, managerMia, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Posted)
	require.Len(t, payments.payments, 1)
	credit := payments.payments[0]
	assert.Equal(t, models.PaymentKindNoShowCredit, credit.Kind)
	assert.Equal(t, int64(3), *credit.LessonID)
	assert.Equal(t, int64(2000), credit.AmountCents)
	assert.Len(t, audit.logs, 1)

	second, err := svc.PostNoShowAdjustments(ctx, from, to, managerMia, models.RequestMeta{})
	require.NoError(t, err)
	assert.Zero(t, second.Posted)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, payments.payments, 1)

	report, err := svc.Report(ctx, from, to)
	require.NoError(t, err)
	for _, line := range report.Lines {
		assert.Empty(t, line.PendingNoShows)
	}
}

func TestSalaryRejectsInvertedRange(t *testing.T) {
	svc, _, _ := salaryFixture()

	_, err := svc.Report(context.Background(), monday, monday)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = svc.PostNoShowAdjustments(context.Background(), monday, monday.Add(-time.Hour), 1, models.RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSalaryCountsBoundaryLessonOnce(t *testing.T) {
	f := newCalendarFixture(
		models.Lesson{ID: 9, StudentID: studentAna, TeacherID: teacherJane, StartAt: at(23, 30), EndAt: at(24, 30), ClassStatus: models.ClassStatusGiven},
		models.Lesson{ID: 10, StudentID: studentBo, TeacherID: teacherJohn, StartAt: at(23, 0), EndAt: at(25, 0), ClassStatus: models.ClassStatusNoShowTeacher},
	)
	jane := f.users.users[teacherJane]
	jane.HourlyRateCents = 3000
	f.users.users[teacherJane] = jane
	payments := &mockPaymentRepo{}
	svc := NewSalaryService(f.users, &filteringLessons{f.lessons}, payments, &recordingAudit{}, zap.NewNop())
	ctx := context.Background()
	tuesday, wednesday := monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 2)

	first, err := svc.Report(ctx, monday, tuesday)
	require.NoError(t, err)
	second, err := svc.Report(ctx, tuesday, wednesday)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), first.Total)
	assert.Zero(t, second.Total)

	posted, err := svc.PostNoShowAdjustments(ctx, tuesday, wednesday, managerMia, models.RequestMeta{})
	require.NoError(t, err)
	assert.Zero(t, posted.Posted)
	assert.Empty(t, payments.payments)
}
