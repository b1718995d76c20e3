package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dayflow/dayflow/models"
)

func activeDays(dates ...string) []models.DailyActivity {
	records := make([]models.DailyActivity, 0, len(dates))
	for _, d := range dates {
		records = append(records, models.DailyActivity{Date: d, Score: 5})
	}
	return records
}

func TestLongestStreakConsecutiveDays(t *testing.T) {
	records := activeDays("2026-01-01", "2026-01-02", "2026-01-03", "2026-01-05")
	assert.Equal(t, 3, LongestStreak(records))
}

func TestLongestStreakIgnoresInactiveDays(t *testing.T) {
	records := []models.DailyActivity{
		{Date: "2026-01-01", Score: 5},
		{Date: "2026-01-02", Score: 0},
		{Date: "2026-01-03", Score: 5},
	}
	assert.Equal(t, 1, LongestStreak(records))
}

func TestLongestStreakEmpty(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
}

func TestWeekGrowthPercent(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	records := []models.DailyActivity{
		{Date: "2026-01-03", Score: 10}, // last week
		{Date: "2026-01-05", Score: 10}, // last week
		{Date: "2026-01-10", Score: 15}, // this week
		{Date: "2026-01-12", Score: 15}, // this week
	}

	growth, thisWeek, lastWeek := WeekGrowth(records, now)
	assert.Equal(t, 50, growth)
	assert.Equal(t, 30.0, thisWeek)
	assert.Equal(t, 20.0, lastWeek)
}

func TestWeekGrowthFromZeroIsFull(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	records := []models.DailyActivity{{Date: "2026-01-12", Score: 3}}

	growth, _, lastWeek := WeekGrowth(records, now)
	assert.Equal(t, 100, growth)
	assert.Equal(t, 0.0, lastWeek)
}

func TestWeekGrowthBothEmptyIsFlat(t *testing.T) {
	growth, thisWeek, lastWeek := WeekGrowth(nil, time.Now())
	assert.Equal(t, 0, growth)
	assert.Equal(t, 0.0, thisWeek)
	assert.Equal(t, 0.0, lastWeek)
}

func TestWeekGrowthDecline(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	records := []models.DailyActivity{
		{Date: "2026-01-04", Score: 20},
		{Date: "2026-01-12", Score: 10},
	}

	growth, _, _ := WeekGrowth(records, now)
	assert.Equal(t, -50, growth)
}

func TestPersonalBest(t *testing.T) {
	records := []models.DailyActivity{
		{Date: "2026-01-01", Score: 4},
		{Date: "2026-01-02", Score: 11.5},
		{Date: "2026-01-03", Score: 7},
	}
	assert.Equal(t, 11.5, PersonalBest(records))
	assert.Equal(t, 0.0, PersonalBest(nil))
}

func TestNextStreakMilestone(t *testing.T) {
	assert.Equal(t, 5, NextStreakMilestone(0))
	assert.Equal(t, 5, NextStreakMilestone(4))
	assert.Equal(t, 10, NextStreakMilestone(5))
	assert.Equal(t, 10, NextStreakMilestone(9))
	assert.Equal(t, 15, NextStreakMilestone(10))
}
