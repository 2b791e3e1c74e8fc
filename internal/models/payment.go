package models

import "time"

// PaymentKind classifies a payment row.
type PaymentKind string

const (
	PaymentKindTuition      PaymentKind = "tuition"
	PaymentKindSalary       PaymentKind = "salary"
	PaymentKindNoShowCredit PaymentKind = "no_show_credit"
)

// Valid reports whether k is a known kind.
func (k PaymentKind) Valid() bool {
	return k == PaymentKindTuition || k == PaymentKindSalary || k == PaymentKindNoShowCredit
}

// Payment is money received from a student or paid to a teacher.
type Payment struct {
	ID          int64       `db:"id" json:"id"`
	StudentID   *int64      `db:"student_id" json:"student_id,omitempty"`
	TeacherID   *int64      `db:"teacher_id" json:"teacher_id,omitempty"`
	LessonID    *int64      `db:"lesson_id" json:"lesson_id,omitempty"`
	Kind        PaymentKind `db:"kind" json:"kind"`
	AmountCents int64       `db:"amount_cents" json:"amount_cents"`
	Note        string      `db:"note" json:"note"`
	PaidAt      time.Time   `db:"paid_at" json:"paid_at"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	StudentID *int64
	TeacherID *int64
	Kind      *PaymentKind
	From      *time.Time
	To        *time.Time
}

// SalaryLine is one teacher's row in the salary report.
type SalaryLine struct {
	TeacherID       int64   `json:"teacher_id"`
	TeacherName     string  `json:"teacher_name"`
	GivenLessons    int     `json:"given_lessons"`
	GivenMinutes    int     `json:"given_minutes"`
	HourlyRateCents int64   `json:"hourly_rate_cents"`
	AmountCents     int64   `json:"amount_cents"`
	PendingNoShows  []int64 `json:"pending_no_show_lesson_ids"`
}

// SalaryReport summarises teacher pay for a period.
type SalaryReport struct {
	From  time.Time    `json:"from"`
	To    time.Time    `json:"to"`
	Lines []SalaryLine `json:"lines"`
	Total int64        `json:"total_cents"`
}
