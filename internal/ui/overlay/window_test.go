package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "05:00", formatSeconds(300))
	assert.Equal(t, "00:09", formatSeconds(9))
	assert.Equal(t, "25:00", formatSeconds(1500))
	assert.Equal(t, "00:00", formatSeconds(0))
	assert.Equal(t, "00:00", formatSeconds(-7))
}

func TestPhaseTitle(t *testing.T) {
	assert.Equal(t, "Short break", phaseTitle(model.PhaseShortBreak))
	assert.Equal(t, "Long break", phaseTitle(model.PhaseLongBreak))
	assert.Equal(t, "Break", phaseTitle(model.PhaseFocus))
}
