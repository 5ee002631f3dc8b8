package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"CSE", "DSAI", "ECE"}, cfg.Departments)
	assert.Equal(t, []int{1, 3, 5, 7}, cfg.Semesters)
	assert.Equal(t, []string{"CSE"}, cfg.SplitSections)
	assert.Equal(t, "C004", cfg.CombinedRoomID)
	assert.Equal(t, 100, cfg.LargeRoomThreshold)
	assert.Equal(t, 40, cfg.LabCapacityCap)
	assert.InDelta(t, 1.25, cfg.AdjacentLabSlack, 1e-9)
	assert.Equal(t, 10, cfg.ClassBreakMins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TIMETABLE_CLASS_BREAK_MINS", "20")
	t.Setenv("TIMETABLE_COMBINED_ROOM_ID", "C001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.ClassBreakMins)
	assert.Equal(t, "C001", cfg.CombinedRoomID)
}

func TestClassBreakSlots(t *testing.T) {
	cfg := &Config{ClassBreakMins: 10}
	assert.Equal(t, 1, cfg.ClassBreakSlots())
	cfg.ClassBreakMins = 30
	assert.Equal(t, 3, cfg.ClassBreakSlots())
}
