package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayflow/dayflow/models"
)

func completions(dates ...string) []models.HabitCompletion {
	out := make([]models.HabitCompletion, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.HabitCompletion{Date: d, Count: 1})
	}
	return out
}

func TestRecomputeStreakEmpty(t *testing.T) {
	streak := recomputeStreak(nil, "2026-01-10")
	assert.Equal(t, models.Streak{}, streak)
}

func TestRecomputeStreakRunEndingToday(t *testing.T) {
	streak := recomputeStreak(completions("2026-01-08", "2026-01-09", "2026-01-10"), "2026-01-10")
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)
	assert.Equal(t, "2026-01-10", streak.LastCompletedDate)
}

func TestRecomputeStreakRunEndingYesterdayStillCurrent(t *testing.T) {
	streak := recomputeStreak(completions("2026-01-08", "2026-01-09"), "2026-01-10")
	assert.Equal(t, 2, streak.Current)
}

func TestRecomputeStreakBrokenRun(t *testing.T) {
	streak := recomputeStreak(completions("2026-01-01", "2026-01-02", "2026-01-03", "2026-01-07"), "2026-01-10")
	assert.Equal(t, 0, streak.Current)
	assert.Equal(t, 3, streak.Longest)
	assert.Equal(t, "2026-01-07", streak.LastCompletedDate)
}

func TestRecomputeStreakUnorderedInput(t *testing.T) {
	streak := recomputeStreak(completions("2026-01-10", "2026-01-08", "2026-01-09"), "2026-01-10")
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)
}
