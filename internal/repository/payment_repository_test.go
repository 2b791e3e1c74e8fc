package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func TestCreateNoShowCreditIsIdempotent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (lesson_id) WHERE kind = 'no_show_credit' DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (lesson_id) WHERE kind = 'no_show_credit' DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	lessonID := int64(21)
	first := &models.Payment{LessonID: &lessonID, AmountCents: 2500}
	written, err := repo.CreateNoShowCredit(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, int64(8), first.ID)
	assert.Equal(t, models.PaymentKindNoShowCredit, first.Kind)

	written, err = repo.CreateNoShowCredit(context.Background(), &models.Payment{LessonID: &lessonID, AmountCents: 2500})
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNoShowCreditRequiresLesson(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	_, err := repo.CreateNoShowCredit(context.Background(), &models.Payment{AmountCents: 100})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaymentsByKind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	kind := models.PaymentKindTuition
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE kind = $1 ORDER BY paid_at DESC, id DESC")).
		WithArgs(kind).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "lesson_id", "kind", "amount_cents", "note", "paid_at", "created_at"}))

	payments, err := repo.List(context.Background(), models.PaymentFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
