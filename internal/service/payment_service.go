package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	CreateNoShowCredit(ctx context.Context, payment *models.Payment) (bool, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
}

type lessonLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Lesson, error)
}

// PaymentService records tuition and salary payments.
type PaymentService struct {
	repo      paymentRepository
	lessons   lessonLookup
	users     calendarUserReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, lessons lessonLookup, users calendarUserReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{repo: repo, lessons: lessons, users: users, audit: audit, validator: validate, logger: logger}
}

// List returns payments matching filter, newest first.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment kind")
	}
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// Create records a tuition payment from a student or a salary payment to a
// teacher. No-show credits are only posted through the salary adjustments.
func (s *PaymentService) Create(ctx context.Context, req dto.CreatePaymentRequest, actorID int64, meta models.RequestMeta) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	kind := models.PaymentKind(req.Kind)

	var refs []participantRef
	switch kind {
	case models.PaymentKindTuition:
		if req.StudentID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required for tuition")
		}
	case models.PaymentKindSalary:
		if req.TeacherID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id is required for salary")
		}
	}
	if req.StudentID != nil {
		refs = append(refs, participantRef{id: *req.StudentID, role: models.RoleStudent})
	}
	if req.TeacherID != nil {
		refs = append(refs, participantRef{id: *req.TeacherID, role: models.RoleTeacher})
	}
	if err := resolveUsers(ctx, s.users, refs); err != nil {
		return nil, err
	}
	if req.LessonID != nil {
		if _, err := s.lessons.FindByID(ctx, *req.LessonID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
			}
			return nil, appErrors.Store(err, "failed to load lesson")
		}
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := &models.Payment{
		StudentID:   req.StudentID,
		TeacherID:   req.TeacherID,
		LessonID:    req.LessonID,
		Kind:        kind,
		AmountCents: req.AmountCents,
		Note:        req.Note,
		PaidAt:      paidAt,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Store(err, "failed to create payment")
	}

	if s.audit != nil {
		newValues, _ := json.Marshal(payment)
		resourceID := strconv.FormatInt(payment.ID, 10)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionPaymentCreate,
			Resource:   "payments",
			ResourceID: &resourceID,
			NewValues:  newValues,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record payment audit log", zap.Error(err))
		}
	}
	return payment, nil
}
