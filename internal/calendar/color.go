package calendar

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// DeriveColor maps a name to a stable #rrggbb colour using a 31-multiplier
// rolling hash over UTF-16 code units with int32 wraparound. The low byte of
// the hash becomes the first pair of hex digits.
func DeriveColor(name string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int32(unit) + ((hash << 5) - hash)
	}

	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%02x", (hash>>(i*8))&0xFF)
	}
	return b.String()
}
