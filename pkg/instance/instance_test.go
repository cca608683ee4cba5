package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("CHARMCART_INSTANCE_ID", "api-1")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "api-1", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("CHARMCART_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	assert.Equal(t, "local", GetID())
}
