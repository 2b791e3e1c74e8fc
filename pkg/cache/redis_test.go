package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "calendar:source", Key("calendar", "source"))
	assert.Equal(t, "permissions:teacher:/calendar", Key("permissions", "teacher", "/calendar"))
}
