package dto

import (
	"fmt"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// CalendarLoadResponse is the body of GET /calendar.
type CalendarLoadResponse struct {
	Success    bool                     `json:"success"`
	Resources  Rows[calendar.Resource]  `json:"resources"`
	Events     Rows[calendar.Event]     `json:"events"`
	TimeRanges Rows[calendar.TimeRange] `json:"timeRanges"`
}

// NewCalendarLoadResponse wraps a projected view.
func NewCalendarLoadResponse(view calendar.View) CalendarLoadResponse {
	return CalendarLoadResponse{
		Success:    true,
		Resources:  Rows[calendar.Resource]{Rows: view.Resources},
		Events:     Rows[calendar.Event]{Rows: view.Events},
		TimeRanges: Rows[calendar.TimeRange]{Rows: view.TimeRanges},
	}
}

// AddedEvent is a lesson proposed by the client.
type AddedEvent struct {
	PhantomID      string   `json:"$PhantomId"`
	StartDate      *Instant `json:"startDate"`
	EndDate        *Instant `json:"endDate"`
	StudentName    FlexID   `json:"student_name"`
	ResourceID     FlexID   `json:"resourceId"`
	ClassType      string   `json:"class_type"`
	ClassStatus    string   `json:"class_status"`
	PaymentStatus  string   `json:"payment_status"`
	RecurrenceRule string   `json:"recurrenceRule"`
}

// UpdatedEvent carries only the fields the client changed.
type UpdatedEvent struct {
	ID             FlexID   `json:"id"`
	StartDate      *Instant `json:"startDate"`
	EndDate        *Instant `json:"endDate"`
	StudentName    *FlexID  `json:"student_name"`
	ResourceID     *FlexID  `json:"resourceId"`
	ClassType      *string  `json:"class_type"`
	ClassStatus    *string  `json:"class_status"`
	PaymentStatus  *string  `json:"payment_status"`
	RecurrenceRule *string  `json:"recurrenceRule"`
}

// RemovedEvent references a stored lesson to delete.
type RemovedEvent struct {
	ID FlexID `json:"id"`
}

// AddedAssignment binds a proposed event to a teacher. EventID is the event's
// phantom id.
type AddedAssignment struct {
	PhantomID  string `json:"$PhantomId"`
	EventID    FlexID `json:"eventId"`
	ResourceID FlexID `json:"resourceId"`
}

// SyncRequest is the body of POST /calendar/sync.
type SyncRequest struct {
	Events struct {
		Added   []AddedEvent   `json:"added"`
		Updated []UpdatedEvent `json:"updated"`
		Removed []RemovedEvent `json:"removed"`
	} `json:"events"`
	Assignments struct {
		Added []AddedAssignment `json:"added"`
	} `json:"assignments"`
}

// ToBatch decodes the wire payload into typed operations. It fails on the
// first malformed entry so nothing is written for a bad request.
func (r SyncRequest) ToBatch() (calendar.Batch, error) {
	assignments := make(map[string]AddedAssignment, len(r.Assignments.Added))
	for _, a := range r.Assignments.Added {
		if a.EventID != "" {
			assignments[string(a.EventID)] = a
		}
	}

	var batch calendar.Batch
	phantoms := make(map[string]int, len(r.Events.Added))
	for i, e := range r.Events.Added {
		if e.PhantomID != "" {
			if first, dup := phantoms[e.PhantomID]; dup {
				return calendar.Batch{}, validation(fmt.Sprintf("events.added[%d]: $PhantomId %q already used by events.added[%d]", i, e.PhantomID, first))
			}
			phantoms[e.PhantomID] = i
		}
		op, err := e.toCreate(assignments)
		if err != nil {
			return calendar.Batch{}, validation(fmt.Sprintf("events.added[%d]: %s", i, err))
		}
		batch.Ops = append(batch.Ops, op)
	}
	for i, e := range r.Events.Updated {
		op, err := e.toPatch()
		if err != nil {
			return calendar.Batch{}, validation(fmt.Sprintf("events.updated[%d]: %s", i, err))
		}
		batch.Ops = append(batch.Ops, op)
	}
	if len(r.Events.Removed) > 0 {
		ids := make([]int64, 0, len(r.Events.Removed))
		for i, ref := range r.Events.Removed {
			id, err := ref.ID.Int64()
			if err != nil {
				return calendar.Batch{}, validation(fmt.Sprintf("events.removed[%d]: %s", i, err))
			}
			ids = append(ids, id)
		}
		batch.Ops = append(batch.Ops, calendar.DeleteLessons{IDs: ids})
	}
	return batch, nil
}

func (e AddedEvent) toCreate(assignments map[string]AddedAssignment) (calendar.CreateLesson, error) {
	op := calendar.CreateLesson{PhantomID: e.PhantomID}

	teacherRef := e.ResourceID
	if a, ok := assignments[e.PhantomID]; ok && e.PhantomID != "" {
		op.AssignmentPhantomID = a.PhantomID
		if teacherRef == "" {
			teacherRef = a.ResourceID
		}
	}
	if teacherRef == "" {
		return op, fmt.Errorf("teacher reference is required")
	}
	teacherID, err := teacherRef.Int64()
	if err != nil {
		return op, fmt.Errorf("teacher: %w", err)
	}
	if e.StudentName == "" {
		return op, fmt.Errorf("student reference is required")
	}
	studentID, err := e.StudentName.Int64()
	if err != nil {
		return op, fmt.Errorf("student: %w", err)
	}
	if e.StartDate == nil || e.EndDate == nil {
		return op, fmt.Errorf("startDate and endDate are required")
	}

	status := models.ClassStatus(e.ClassStatus)
	if status == "" {
		status = models.ClassStatusScheduled
	}
	op.Lesson = models.Lesson{
		StudentID:      studentID,
		TeacherID:      teacherID,
		StartAt:        e.StartDate.Time,
		EndAt:          e.EndDate.Time,
		ClassType:      e.ClassType,
		ClassStatus:    status,
		PaymentStatus:  models.PaymentStatus(e.PaymentStatus),
		RecurrenceRule: e.RecurrenceRule,
	}
	return op, nil
}

func (e UpdatedEvent) toPatch() (calendar.PatchLesson, error) {
	id, err := e.ID.Int64()
	if err != nil {
		return calendar.PatchLesson{}, err
	}
	var p models.LessonPatch
	if e.StartDate != nil {
		p.StartAt = &e.StartDate.Time
	}
	if e.EndDate != nil {
		p.EndAt = &e.EndDate.Time
	}
	if e.StudentName != nil {
		studentID, err := e.StudentName.Int64()
		if err != nil {
			return calendar.PatchLesson{}, fmt.Errorf("student: %w", err)
		}
		p.StudentID = &studentID
	}
	if e.ResourceID != nil {
		teacherID, err := e.ResourceID.Int64()
		if err != nil {
			return calendar.PatchLesson{}, fmt.Errorf("teacher: %w", err)
		}
		p.TeacherID = &teacherID
	}
	p.ClassType = e.ClassType
	if e.ClassStatus != nil {
		status := models.ClassStatus(*e.ClassStatus)
		p.ClassStatus = &status
	}
	if e.PaymentStatus != nil {
		status := models.PaymentStatus(*e.PaymentStatus)
		if !status.Valid() {
			return calendar.PatchLesson{}, fmt.Errorf("unknown payment status %q", status)
		}
		p.PaymentStatus = &status
	}
	p.RecurrenceRule = e.RecurrenceRule
	return calendar.PatchLesson{ID: id, Patch: p}, nil
}

func validation(msg string) error {
	return appErrors.Clone(appErrors.ErrValidation, msg)
}

// SyncResponse is the body of POST /calendar/sync. The maps are omitted when
// nothing was created.
type SyncResponse struct {
	Success     bool                      `json:"success"`
	Error       *appErrors.Error          `json:"error,omitempty"`
	Events      *Rows[calendar.IDMapping] `json:"events,omitempty"`
	Assignments *Rows[calendar.IDMapping] `json:"assignments,omitempty"`
}

// NewSyncFailure reports a partially applied batch: the error plus the
// phantom ids of the lessons that were written anyway.
func NewSyncFailure(result calendar.Result, err error) SyncResponse {
	resp := NewSyncResponse(result)
	resp.Success = false
	resp.Error = appErrors.FromError(err)
	return resp
}

// NewSyncResponse renders a reconciliation result.
func NewSyncResponse(result calendar.Result) SyncResponse {
	resp := SyncResponse{Success: true}
	if len(result.Events) > 0 {
		resp.Events = &Rows[calendar.IDMapping]{Rows: result.Events}
	}
	if len(result.Assignments) > 0 {
		resp.Assignments = &Rows[calendar.IDMapping]{Rows: result.Assignments}
	}
	return resp
}

// EditableResponse answers the before-edit check.
type EditableResponse struct {
	Editable bool   `json:"editable"`
	Reason   string `json:"reason,omitempty"`
}

// DurationResponse carries the suggested lesson length for a class type.
type DurationResponse struct {
	ClassType    string  `json:"class_type"`
	Minutes      int     `json:"minutes"`
	SuggestedEnd *string `json:"suggested_end,omitempty"`
}
