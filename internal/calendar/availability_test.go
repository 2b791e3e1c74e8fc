package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-05-06 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsWithinAvailableTime(t *testing.T) {
	window := []Span{{Start: at("10:00"), End: at("11:00")}}

	assert.True(t, IsWithinAvailableTime(at("10:00"), at("11:00"), window), "exact fit")
	assert.True(t, IsWithinAvailableTime(at("10:15"), at("10:45"), window), "nested")
	assert.False(t, IsWithinAvailableTime(at("10:30"), at("11:30"), window), "overlaps end")
	assert.False(t, IsWithinAvailableTime(at("09:30"), at("10:30"), window), "overlaps start")
	assert.False(t, IsWithinAvailableTime(at("12:00"), at("13:00"), window), "disjoint")
	assert.False(t, IsWithinAvailableTime(at("10:00"), at("11:00"), nil), "no windows")
}

func TestIsWithinAvailableTimeDoesNotChainWindows(t *testing.T) {
	windows := []Span{
		{Start: at("10:00"), End: at("11:00")},
		{Start: at("11:00"), End: at("12:00")},
	}
	assert.False(t, IsWithinAvailableTime(at("10:30"), at("11:30"), windows))
	assert.True(t, IsWithinAvailableTime(at("11:15"), at("11:45"), windows))
}

func TestLessonWithinRecurringAvailability(t *testing.T) {
	windows := []models.AvailabilityWindow{{
		TeacherID:      7,
		StartAt:        at("10:00"),
		EndAt:          at("12:00"),
		RecurrenceRule: "FREQ=WEEKLY",
	}}

	threeWeeksLater := models.Lesson{StartAt: at("10:30").AddDate(0, 0, 21), EndAt: at("11:30").AddDate(0, 0, 21)}
	assert.True(t, LessonWithinAvailability(threeWeeksLater, windows))

	nextDay := models.Lesson{StartAt: at("10:30").AddDate(0, 0, 1), EndAt: at("11:30").AddDate(0, 0, 1)}
	assert.False(t, LessonWithinAvailability(nextDay, windows))

	before := models.Lesson{StartAt: at("10:30").AddDate(0, 0, -7), EndAt: at("11:30").AddDate(0, 0, -7)}
	assert.False(t, LessonWithinAvailability(before, windows))
}

func TestParseRule(t *testing.T) {
	rule, err := ParseRule("RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=MO")
	require.NoError(t, err)
	assert.Equal(t, Rule{Frequency: FrequencyWeekly, Interval: 2}, rule)

	rule, err = ParseRule("")
	require.NoError(t, err)
	assert.True(t, rule.IsZero())

	_, err = ParseRule("FREQ=YEARLY")
	assert.ErrorIs(t, err, ErrInvalidRule)
	_, err = ParseRule("FREQ=DAILY;INTERVAL=0")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestOccurrencesBiweekly(t *testing.T) {
	span := Span{Start: at("09:00"), End: at("10:00")}
	rule := Rule{Frequency: FrequencyWeekly, Interval: 2}

	occ := Occurrences(span, rule, at("00:00"), at("00:00").AddDate(0, 0, 35))
	require.Len(t, occ, 3)
	assert.Equal(t, at("09:00").AddDate(0, 0, 14), occ[1].Start)
	assert.Equal(t, at("10:00").AddDate(0, 0, 28), occ[2].End)
}

func TestDefaultDurationMinutes(t *testing.T) {
	assert.Equal(t, 30, DefaultDurationMinutes("trial"))
	assert.Equal(t, 60, DefaultDurationMinutes("regular"))
	assert.Equal(t, 60, DefaultDurationMinutes("anything else"))
	assert.Equal(t, 60, DefaultDurationMinutes(""))
	assert.Equal(t, at("10:30"), SuggestedEnd(at("10:00"), "trial"))
}
