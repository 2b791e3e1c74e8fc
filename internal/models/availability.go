package models

import "time"

// AvailabilityWindow is a time range during which a teacher accepts lessons.
// A non-empty RecurrenceRule repeats the window weekly.
type AvailabilityWindow struct {
	ID               int64     `db:"id" json:"id"`
	TeacherID        int64     `db:"teacher_id" json:"teacher_id"`
	StartAt          time.Time `db:"start_at" json:"start_at"`
	EndAt            time.Time `db:"end_at" json:"end_at"`
	RecurrenceRule   string    `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	TeacherFirstName string    `db:"teacher_first_name" json:"teacher_first_name,omitempty"`
	TeacherLastName  string    `db:"teacher_last_name" json:"teacher_last_name,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Recurring reports whether the window repeats.
func (w AvailabilityWindow) Recurring() bool {
	return w.RecurrenceRule != ""
}
