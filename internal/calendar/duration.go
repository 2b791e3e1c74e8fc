package calendar

import "time"

const ClassTypeTrial = "trial"

// DefaultDurationMinutes is the suggested length of a lesson of classType.
func DefaultDurationMinutes(classType string) int {
	if classType == ClassTypeTrial {
		return 30
	}
	return 60
}

// SuggestedEnd is start plus the default duration for classType.
func SuggestedEnd(start time.Time, classType string) time.Time {
	return start.Add(time.Duration(DefaultDurationMinutes(classType)) * time.Minute)
}
