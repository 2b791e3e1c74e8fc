package dto

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	StudentID   *int64   `json:"student_id"`
	TeacherID   *int64   `json:"teacher_id"`
	LessonID    *int64   `json:"lesson_id"`
	Kind        string   `json:"kind" validate:"required,oneof=tuition salary"`
	AmountCents int64    `json:"amount_cents" validate:"required,gt=0"`
	Note        string   `json:"note" validate:"max=500"`
	PaidAt      *Instant `json:"paid_at"`
}

// AdjustmentResponse reports the no-show credits posted for a period.
type AdjustmentResponse struct {
	Posted  int     `json:"posted"`
	Skipped int     `json:"skipped"`
	IDs     []int64 `json:"payment_ids"`
}
