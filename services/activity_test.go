package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayflow/dayflow/models"
)

func TestComputeScoreWeights(t *testing.T) {
	rec := models.DailyActivity{
		TasksCompleted:          3,
		FocusMinutes:            52,
		HabitsCompleted:         1,
		NotesCreated:            2,
		ScheduleEventsCompleted: 0,
	}

	// 3*2 + floor(52/25) + 1*1.5 + 2*1 = 11.5
	assert.Equal(t, 11.5, ComputeScore(rec))
}

func TestComputeScoreEmptyDay(t *testing.T) {
	assert.Equal(t, 0.0, ComputeScore(models.DailyActivity{}))
}

func TestComputeScorePartialFocusBlockIgnored(t *testing.T) {
	// 24 focus minutes is less than one full block and contributes nothing.
	assert.Equal(t, 0.0, ComputeScore(models.DailyActivity{FocusMinutes: 24}))
	assert.Equal(t, 1.0, ComputeScore(models.DailyActivity{FocusMinutes: 25}))
	assert.Equal(t, 1.0, ComputeScore(models.DailyActivity{FocusMinutes: 49}))
}

func TestComputeIntensityColdStart(t *testing.T) {
	// Fewer than 5 history samples uses fixed thresholds.
	history := []float64{4, 5}

	assert.Equal(t, 0, ComputeIntensity(0, history))
	assert.Equal(t, 1, ComputeIntensity(2.9, history))
	assert.Equal(t, 2, ComputeIntensity(3, history))
	assert.Equal(t, 2, ComputeIntensity(5.9, history))
	assert.Equal(t, 3, ComputeIntensity(6, history))
	assert.Equal(t, 3, ComputeIntensity(9.9, history))
	assert.Equal(t, 4, ComputeIntensity(10, history))
}

func TestComputeIntensityRelativeToBaseline(t *testing.T) {
	// avg = 8 with enough samples; thresholds are 4 / 8 / 12.
	history := []float64{8, 8, 8, 8, 8}

	assert.Equal(t, 0, ComputeIntensity(0, history))
	assert.Equal(t, 1, ComputeIntensity(3.9, history))
	assert.Equal(t, 2, ComputeIntensity(4, history))
	assert.Equal(t, 2, ComputeIntensity(7.9, history))
	assert.Equal(t, 3, ComputeIntensity(8, history))
	assert.Equal(t, 3, ComputeIntensity(11.9, history))
	assert.Equal(t, 4, ComputeIntensity(12, history))
}

func TestComputeIntensityHighBaselineDampensScore(t *testing.T) {
	// A day that would look intense for a new user reads as light for a
	// user whose recent average is much higher.
	history := []float64{30, 30, 30, 30, 30}
	assert.Equal(t, 1, ComputeIntensity(10, history))
}

func TestTodayFormat(t *testing.T) {
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, Today())
}
