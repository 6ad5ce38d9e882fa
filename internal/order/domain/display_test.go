package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayCoversAllStatuses(t *testing.T) {
	for _, status := range AllStatuses {
		d := status.Display()
		assert.NotEmpty(t, d.Label, "status %s", status)
		assert.NotEmpty(t, d.Color, "status %s", status)
	}
}

func TestDisplayUnknownStatusFallsBack(t *testing.T) {
	d := Status("mystery").Display()
	assert.Equal(t, "mystery", d.Label)
	assert.Equal(t, "gray", d.Color)
}
