package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the repeat unit of a recurrence rule.
type Frequency string

const (
	FrequencyDaily  Frequency = "DAILY"
	FrequencyWeekly Frequency = "WEEKLY"
)

// Rule is a parsed "FREQ=WEEKLY;INTERVAL=2" style descriptor.
type Rule struct {
	Frequency Frequency
	Interval  int
}

var ErrInvalidRule = errors.New("calendar: invalid recurrence rule")

// ParseRule parses the FREQ and INTERVAL parts of an RRULE string. Other
// parts are ignored. An empty string yields a zero Rule and no error.
func ParseRule(raw string) (Rule, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "RRULE:")
	if raw == "" {
		return Rule{}, nil
	}
	rule := Rule{Interval: 1}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, part)
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			rule.Frequency = Frequency(strings.ToUpper(strings.TrimSpace(value)))
		case "INTERVAL":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 {
				return Rule{}, fmt.Errorf("%w: interval %q", ErrInvalidRule, value)
			}
			rule.Interval = n
		}
	}
	if rule.Frequency != FrequencyDaily && rule.Frequency != FrequencyWeekly {
		return Rule{}, fmt.Errorf("%w: frequency %q", ErrInvalidRule, rule.Frequency)
	}
	return rule, nil
}

// IsZero reports whether the rule does not repeat.
func (r Rule) IsZero() bool {
	return r.Frequency == ""
}

func (r Rule) stepDays() int {
	days := 1
	if r.Frequency == FrequencyWeekly {
		days = 7
	}
	return days * r.Interval
}

// Occurrences expands one span repeated by rule into every occurrence that
// overlaps [from, to]. Steps use calendar days so wall-clock times survive
// DST changes. A zero rule returns the span itself when it overlaps.
func Occurrences(span Span, rule Rule, from, to time.Time) []Span {
	if rule.IsZero() {
		if span.overlaps(from, to) {
			return []Span{span}
		}
		return nil
	}
	length := span.End.Sub(span.Start)
	step := rule.stepDays()

	k := 0
	if from.After(span.End) {
		k = int(from.Sub(span.End)/(time.Duration(step)*24*time.Hour)) - 1
		if k < 0 {
			k = 0
		}
	}

	var out []Span
	for {
		start := span.Start.AddDate(0, 0, k*step)
		if start.After(to) {
			return out
		}
		occ := Span{Start: start, End: start.Add(length)}
		if occ.overlaps(from, to) {
			out = append(out, occ)
		}
		k++
	}
}
