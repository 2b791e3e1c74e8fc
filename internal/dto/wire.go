package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexID accepts a JSON string or number and keeps its textual form. The
// calendar client sends ids either way.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// Int64 parses the id as a positive integer.
func (f FlexID) Int64() (int64, error) {
	id, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", string(f))
	}
	return id, nil
}

// Instant is a timestamp that also accepts ISO8601 without an offset (read as UTC).
type Instant struct {
	time.Time
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseInstant(raw)
	if err != nil {
		return err
	}
	i.Time = t
	return nil
}

// ParseInstant parses raw using the accepted layouts.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

// Rows wraps a collection the way the calendar client expects it.
type Rows[T any] struct {
	Rows []T `json:"rows"`
}
