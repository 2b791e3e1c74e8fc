package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const paymentColumns = `id, student_id, teacher_id, lesson_id, kind, amount_cents, note, paid_at, created_at`

// PaymentRepository persists tuition, salary and adjustment payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment and assigns its generated id.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = payment.CreatedAt
	}
	const query = `INSERT INTO payments (student_id, teacher_id, lesson_id, kind, amount_cents, note, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		payment.StudentID, payment.TeacherID, payment.LessonID, payment.Kind, payment.AmountCents, payment.Note, payment.PaidAt, payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// CreateNoShowCredit inserts a no_show_credit payment unless one already
// exists for the lesson. It reports whether a row was written.
func (r *PaymentRepository) CreateNoShowCredit(ctx context.Context, payment *models.Payment) (bool, error) {
	if payment.LessonID == nil {
		return false, fmt.Errorf("create no-show credit: lesson reference is required")
	}
	payment.Kind = models.PaymentKindNoShowCredit
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = payment.CreatedAt
	}
	const query = `INSERT INTO payments (student_id, teacher_id, lesson_id, kind, amount_cents, note, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (lesson_id) WHERE kind = 'no_show_credit' DO NOTHING
RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		payment.StudentID, payment.TeacherID, payment.LessonID, payment.Kind, payment.AmountCents, payment.Note, payment.PaidAt, payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create no-show credit: %w", err)
	}
	return true, nil
}

// List returns payments matching filter, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var f filterSet
	if filter.StudentID != nil {
		f.add("student_id = $%d", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		f.add("teacher_id = $%d", *filter.TeacherID)
	}
	if filter.Kind != nil {
		f.add("kind = $%d", *filter.Kind)
	}
	if filter.From != nil {
		f.add("paid_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		f.add("paid_at < $%d", *filter.To)
	}

	query := "SELECT " + paymentColumns + " FROM payments" + f.where() + " ORDER BY paid_at DESC, id DESC"
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, f.args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
