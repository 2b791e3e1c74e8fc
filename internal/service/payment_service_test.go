package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

func newPaymentFixture() (*PaymentService, *mockPaymentRepo, *recordingAudit) {
	f := newCalendarFixture(janeLesson(5, at(10, 0), at(11, 0)))
	repo := &mockPaymentRepo{}
	audit := &recordingAudit{}
	return NewPaymentService(repo, f.lessons, f.users, audit, nil, zap.NewNop()), repo, audit
}

func int64Ptr(v int64) *int64 { return &v }

func TestPaymentCreateTuition(t *testing.T) {
	svc, repo, audit := newPaymentFixture()

	payment, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		StudentID:   int64Ptr(studentAna),
		LessonID:    int64Ptr(5),
		Kind:        "tuition",
		AmountCents: 4500,
	}, managerMia, models.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), payment.ID)
	assert.False(t, payment.PaidAt.IsZero())
	require.Len(t, repo.payments, 1)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPaymentCreate, audit.logs[0].Action)
	assert.Equal(t, "10.0.0.1", audit.logs[0].IPAddress)
}

func TestPaymentCreateValidation(t *testing.T) {
	svc, repo, _ := newPaymentFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreatePaymentRequest
		want *appErrors.Error
	}{
		{"no-show credits are not manual", dto.CreatePaymentRequest{StudentID: int64Ptr(studentAna), Kind: "no_show_credit", AmountCents: 10}, appErrors.ErrValidation},
		{"amount must be positive", dto.CreatePaymentRequest{StudentID: int64Ptr(studentAna), Kind: "tuition"}, appErrors.ErrValidation},
		{"tuition needs a student", dto.CreatePaymentRequest{Kind: "tuition", AmountCents: 10}, appErrors.ErrValidation},
		{"salary needs a teacher", dto.CreatePaymentRequest{Kind: "salary", AmountCents: 10}, appErrors.ErrValidation},
		{"teacher must be a teacher", dto.CreatePaymentRequest{TeacherID: int64Ptr(studentAna), Kind: "salary", AmountCents: 10}, appErrors.ErrValidation},
		{"unknown student", dto.CreatePaymentRequest{StudentID: int64Ptr(404), Kind: "tuition", AmountCents: 10}, appErrors.ErrNotFound},
		{"unknown lesson", dto.CreatePaymentRequest{StudentID: int64Ptr(studentAna), LessonID: int64Ptr(404), Kind: "tuition", AmountCents: 10}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req, managerMia, models.RequestMeta{})
			assert.True(t, appErrors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.Empty(t, repo.payments)
}

func TestPaymentListRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newPaymentFixture()
	kind := models.PaymentKind("refund")

	_, err := svc.List(context.Background(), models.PaymentFilter{Kind: &kind})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	payments, err := svc.List(context.Background(), models.PaymentFilter{})
	require.NoError(t, err)
	assert.NotNil(t, payments)
}
