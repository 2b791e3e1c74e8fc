package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveColorGolden(t *testing.T) {
	cases := map[string]string{
		"":           "#000000",
		"A":          "#410000",
		"Jane Doe":   "#485fa7",
		"John Smith": "#ae5cae",
		"Ana Lima":   "#dd0287",
		"Zoë Müller": "#268470",
		"😀":          "#630d1b",
	}
	for name, want := range cases {
		assert.Equal(t, want, DeriveColor(name), name)
	}
}

func TestDeriveColorDeterministic(t *testing.T) {
	for _, name := range []string{"Maria Silva", "x", "a much longer teacher name that overflows int32 many times"} {
		first := DeriveColor(name)
		assert.Equal(t, first, DeriveColor(name))
		assert.Len(t, first, 7)
	}
}
