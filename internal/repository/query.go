package repository

import (
	"fmt"
	"strings"
)

// filterSet accumulates AND-ed conditions bound to positional placeholders.
type filterSet struct {
	conds []string
	args  []interface{}
}

// add appends a condition. Every %[1]d verb in format receives the
// placeholder number assigned to value, so one value may be referenced twice.
func (f *filterSet) add(format string, value interface{}) {
	f.args = append(f.args, value)
	f.conds = append(f.conds, fmt.Sprintf(format, len(f.args)))
}

// where renders the conditions as a WHERE clause, or nothing when empty.
func (f *filterSet) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}
