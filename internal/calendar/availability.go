package calendar

import (
	"time"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

// Span is a half-open time interval.
type Span struct {
	Start time.Time
	End   time.Time
}

func (s Span) contains(start, end time.Time) bool {
	return !start.Before(s.Start) && !end.After(s.End)
}

func (s Span) overlaps(from, to time.Time) bool {
	return s.Start.Before(to) && s.End.After(from)
}

// IsWithinAvailableTime reports whether [start, end] is nested inside a single
// span. Touching or chained spans do not combine.
func IsWithinAvailableTime(start, end time.Time, spans []Span) bool {
	for _, s := range spans {
		if s.contains(start, end) {
			return true
		}
	}
	return false
}

// ExpandWindows turns stored availability windows into the concrete spans that
// overlap [from, to], expanding recurring windows. Windows whose rule cannot be
// parsed are treated as one-off.
func ExpandWindows(windows []models.AvailabilityWindow, from, to time.Time) []Span {
	var spans []Span
	for _, w := range windows {
		rule, err := ParseRule(w.RecurrenceRule)
		if err != nil {
			rule = Rule{}
		}
		spans = append(spans, Occurrences(Span{Start: w.StartAt, End: w.EndAt}, rule, from, to)...)
	}
	return spans
}

// LessonWithinAvailability reports whether the lesson falls inside one of the
// windows, recurring windows included.
func LessonWithinAvailability(lesson models.Lesson, windows []models.AvailabilityWindow) bool {
	spans := ExpandWindows(windows, lesson.StartAt, lesson.EndAt)
	return IsWithinAvailableTime(lesson.StartAt, lesson.EndAt, spans)
}
