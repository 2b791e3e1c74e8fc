package dto

import (
	"time"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

// CreateAvailabilityRequest is the body of POST /availability. Date presence
// and ordering are checked by a struct-level rule the service registers.
type CreateAvailabilityRequest struct {
	TeacherID      int64   `json:"teacher_id" validate:"omitempty,gt=0"`
	StartDate      Instant `json:"startDate"`
	EndDate        Instant `json:"endDate"`
	RecurrenceRule string  `json:"recurrenceRule" validate:"omitempty,max=255"`
}

// AvailabilityResponse is one availability window.
type AvailabilityResponse struct {
	ID             int64     `json:"id"`
	TeacherID      int64     `json:"teacher_id"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	RecurrenceRule string    `json:"recurrenceRule,omitempty"`
	TeacherName    string    `json:"teacher_name,omitempty"`
}

// NewAvailabilityResponse renders a stored window.
func NewAvailabilityResponse(w models.AvailabilityWindow) AvailabilityResponse {
	teacher := models.User{FirstName: w.TeacherFirstName, LastName: w.TeacherLastName}
	return AvailabilityResponse{
		ID:             w.ID,
		TeacherID:      w.TeacherID,
		StartDate:      w.StartAt,
		EndDate:        w.EndAt,
		RecurrenceRule: w.RecurrenceRule,
		TeacherName:    teacher.FullName(),
	}
}
