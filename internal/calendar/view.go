package calendar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const notAssigned = "Not assigned"

// Source is the raw data behind the unified calendar view.
type Source struct {
	Teachers []models.User               `json:"teachers"`
	Lessons  []models.LessonDetail       `json:"lessons"`
	Windows  []models.AvailabilityWindow `json:"windows"`
}

// Viewer is the caller the view is built for.
type Viewer struct {
	UserID int64
	Role   models.Role
}

// Visible returns the subset of src the viewer may see. Managers and admins
// see everything; everyone else sees only rows whose teacher is themselves,
// which leaves students and accountants with an empty view. src is not
// modified.
func Visible(src Source, viewer Viewer) Source {
	if viewer.Role.IsStaff() {
		return Source{
			Teachers: append([]models.User(nil), src.Teachers...),
			Lessons:  append([]models.LessonDetail(nil), src.Lessons...),
			Windows:  append([]models.AvailabilityWindow(nil), src.Windows...),
		}
	}

	out := Source{
		Teachers: []models.User{},
		Lessons:  []models.LessonDetail{},
		Windows:  []models.AvailabilityWindow{},
	}
	if viewer.Role != models.RoleTeacher {
		return out
	}
	for _, t := range src.Teachers {
		if t.ID == viewer.UserID {
			out.Teachers = append(out.Teachers, t)
		}
	}
	for _, l := range src.Lessons {
		if l.TeacherID == viewer.UserID {
			out.Lessons = append(out.Lessons, l)
		}
	}
	for _, w := range src.Windows {
		if w.TeacherID == viewer.UserID {
			out.Windows = append(out.Windows, w)
		}
	}
	return out
}

// Resource is a teacher row of the calendar sidebar.
type Resource struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EventColor string `json:"eventColor"`
}

// Event is a lesson as rendered on the calendar.
type Event struct {
	ID             int64     `json:"id"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Name           string    `json:"name"`
	StudentName    string    `json:"student_name"`
	ResourceID     string    `json:"resourceId"`
	AllDay         bool      `json:"allDay"`
	ClassType      string    `json:"class_type"`
	ClassStatus    string    `json:"class_status"`
	PaymentStatus  string    `json:"payment_status"`
	RecurrenceRule string    `json:"recurrenceRule"`
}

// TimeRange is an availability window drawn behind the events.
type TimeRange struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
}

// View holds the three parallel row sets of the calendar.
type View struct {
	Resources  []Resource
	Events     []Event
	TimeRanges []TimeRange
}

// ProjectTeacher renders a teacher as a calendar resource.
func ProjectTeacher(t models.User) Resource {
	name := t.FullName()
	return Resource{ID: strconv.FormatInt(t.ID, 10), Name: name, EventColor: DeriveColor(name)}
}

// ProjectLesson renders a lesson as a calendar event.
func ProjectLesson(l models.LessonDetail) Event {
	return Event{
		ID:        l.ID,
		StartDate: l.StartAt,
		EndDate:   l.EndAt,
		Name: fmt.Sprintf("%s %s / %s / %s",
			l.StudentFirstName, l.StudentLastName,
			orNotAssigned(l.ClassType), orNotAssigned(string(l.PaymentStatus))),
		StudentName:    strconv.FormatInt(l.StudentID, 10),
		ResourceID:     strconv.FormatInt(l.TeacherID, 10),
		ClassType:      l.ClassType,
		ClassStatus:    string(l.ClassStatus),
		PaymentStatus:  string(l.PaymentStatus),
		RecurrenceRule: l.RecurrenceRule,
	}
}

// ProjectWindow renders an availability window as a time range.
func ProjectWindow(w models.AvailabilityWindow) TimeRange {
	teacher := models.User{FirstName: w.TeacherFirstName, LastName: w.TeacherLastName}
	return TimeRange{
		ID:        w.ID,
		TeacherID: w.TeacherID,
		StartDate: w.StartAt,
		EndDate:   w.EndAt,
		Name:      fmt.Sprintf("%s %s's availability", w.TeacherFirstName, w.TeacherLastName),
		Color:     DeriveColor(teacher.FullName()),
	}
}

// Project renders every row of src.
func Project(src Source) View {
	view := View{
		Resources:  make([]Resource, 0, len(src.Teachers)),
		Events:     make([]Event, 0, len(src.Lessons)),
		TimeRanges: make([]TimeRange, 0, len(src.Windows)),
	}
	for _, t := range src.Teachers {
		view.Resources = append(view.Resources, ProjectTeacher(t))
	}
	for _, l := range src.Lessons {
		view.Events = append(view.Events, ProjectLesson(l))
	}
	for _, w := range src.Windows {
		view.TimeRanges = append(view.TimeRanges, ProjectWindow(w))
	}
	return view
}

func orNotAssigned(v string) string {
	if v == "" {
		return notAssigned
	}
	return v
}
