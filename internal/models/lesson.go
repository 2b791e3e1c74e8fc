package models

import "time"

// ClassStatus records what happened to a lesson. Values outside the known
// set are kept as free text for older rows.
type ClassStatus string

const (
	ClassStatusScheduled     ClassStatus = "scheduled"
	ClassStatusGiven         ClassStatus = "given"
	ClassStatusNoShowStudent ClassStatus = "no-show-student"
	ClassStatusNoShowTeacher ClassStatus = "no-show-teacher"
)

// Known reports whether s is one of the enumerated statuses.
func (s ClassStatus) Known() bool {
	switch s {
	case ClassStatusScheduled, ClassStatusGiven, ClassStatusNoShowStudent, ClassStatusNoShowTeacher:
		return true
	}
	return false
}

// PaymentStatus is paid, unpaid or empty for unassigned.
type PaymentStatus string

const (
	PaymentStatusUnassigned PaymentStatus = ""
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
)

// Valid reports whether s is one of the accepted payment statuses.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusUnassigned || s == PaymentStatusPaid || s == PaymentStatusUnpaid
}

// Lesson is a scheduled occurrence between one student and one teacher.
type Lesson struct {
	ID             int64         `db:"id" json:"id"`
	StudentID      int64         `db:"student_id" json:"student_id"`
	TeacherID      int64         `db:"teacher_id" json:"teacher_id"`
	StartAt        time.Time     `db:"start_at" json:"start_at"`
	EndAt          time.Time     `db:"end_at" json:"end_at"`
	ClassType      string        `db:"class_type" json:"class_type"`
	ClassStatus    ClassStatus   `db:"class_status" json:"class_status"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"payment_status"`
	RecurrenceRule string        `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// LessonDetail is a lesson joined with participant names.
type LessonDetail struct {
	Lesson
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
	TeacherFirstName string `db:"teacher_first_name" json:"teacher_first_name"`
	TeacherLastName  string `db:"teacher_last_name" json:"teacher_last_name"`
}

// LessonFilter narrows lesson listings. Zero values are ignored.
type LessonFilter struct {
	TeacherID   *int64
	StudentID   *int64
	ClassStatus *ClassStatus
	From        *time.Time
	To          *time.Time
	// StartOnly bounds start_at by [From, To) instead of matching any lesson
	// overlapping the range.
	StartOnly bool
}

// LessonPatch is a sparse update: nil fields are left untouched.
type LessonPatch struct {
	StudentID      *int64
	TeacherID      *int64
	StartAt        *time.Time
	EndAt          *time.Time
	ClassType      *string
	ClassStatus    *ClassStatus
	PaymentStatus  *PaymentStatus
	RecurrenceRule *string
}

// Empty reports whether the patch carries no field.
func (p LessonPatch) Empty() bool {
	return p.StudentID == nil && p.TeacherID == nil && p.StartAt == nil && p.EndAt == nil &&
		p.ClassType == nil && p.ClassStatus == nil && p.PaymentStatus == nil && p.RecurrenceRule == nil
}

// Apply returns a copy of l with the patch fields written over it.
func (p LessonPatch) Apply(l Lesson) Lesson {
	if p.StudentID != nil {
		l.StudentID = *p.StudentID
	}
	if p.TeacherID != nil {
		l.TeacherID = *p.TeacherID
	}
	if p.StartAt != nil {
		l.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		l.EndAt = *p.EndAt
	}
	if p.ClassType != nil {
		l.ClassType = *p.ClassType
	}
	if p.ClassStatus != nil {
		l.ClassStatus = *p.ClassStatus
	}
	if p.PaymentStatus != nil {
		l.PaymentStatus = *p.PaymentStatus
	}
	if p.RecurrenceRule != nil {
		l.RecurrenceRule = *p.RecurrenceRule
	}
	return l
}
