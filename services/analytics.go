package services

import (
	"math"
	"time"

	"github.com/dayflow/dayflow/models"
)

// streakToleranceHours allows for day-boundary float imprecision while
// still only accepting a calendar-day difference of one (1.1 days).
const streakToleranceHours = 26.4

// LongestStreak returns the longest run of consecutive active days
// (score > 0) in a date-ascending record list.
func LongestStreak(records []models.DailyActivity) int {
	maxStreak, current := 0, 0
	var last time.Time

	for _, rec := range records {
		if rec.Score <= 0 {
			continue
		}
		day, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			continue
		}
		if last.IsZero() || day.Sub(last).Hours() > streakToleranceHours {
			current = 1
		} else {
			current++
		}
		if current > maxStreak {
			maxStreak = current
		}
		last = day
	}
	return maxStreak
}

// WeekGrowth compares the trailing 7-day score total against the 7 days
// before that and returns the change as a rounded percentage. A week that
// starts from zero counts as 100% growth; two empty weeks are flat.
func WeekGrowth(records []models.DailyActivity, now time.Time) (growth int, thisWeek, lastWeek float64) {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	for _, rec := range records {
		day, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			continue
		}
		switch {
		case !day.Before(weekAgo):
			thisWeek += rec.Score
		case !day.Before(twoWeeksAgo):
			lastWeek += rec.Score
		}
	}

	switch {
	case lastWeek > 0:
		growth = int(math.Round((thisWeek - lastWeek) / lastWeek * 100))
	case thisWeek > 0:
		growth = 100
	}
	return growth, thisWeek, lastWeek
}

// PersonalBest returns the highest single-day score among active days.
func PersonalBest(records []models.DailyActivity) float64 {
	best := 0.0
	for _, rec := range records {
		if rec.Score > best {
			best = rec.Score
		}
	}
	return best
}

// NextStreakMilestone returns the smallest multiple of 5 strictly greater
// than the given streak.
func NextStreakMilestone(streak int) int {
	return (streak/5 + 1) * 5
}
