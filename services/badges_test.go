package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow/models"
)

func badgeIDs(badges []models.EarnedBadge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.BadgeID)
	}
	return ids
}

func TestCatalogHasStableShape(t *testing.T) {
	require.Len(t, BadgeCatalog, 15)

	seen := map[string]bool{}
	for _, def := range BadgeCatalog {
		assert.False(t, seen[def.ID], "duplicate badge id %s", def.ID)
		seen[def.ID] = true
		if def.MetaCheck == nil {
			assert.NotNil(t, def.Check, "badge %s has no predicate", def.ID)
		}
	}
	assert.True(t, seen["total_mastery"])
}

func TestMetaPredicateWiredAtInit(t *testing.T) {
	var meta *BadgeDef
	for i := range BadgeCatalog {
		if BadgeCatalog[i].ID == "total_mastery" {
			meta = &BadgeCatalog[i]
		}
	}
	require.NotNil(t, meta)
	require.NotNil(t, meta.MetaCheck, "meta predicate must be attached during package init")

	all := map[string]bool{}
	for _, def := range BadgeCatalog {
		if def.Check != nil {
			all[def.ID] = true
		}
	}
	assert.True(t, meta.MetaCheck(all))

	delete(all, "first_task")
	assert.False(t, meta.MetaCheck(all))
}

func TestEvaluateCatalogFirstActions(t *testing.T) {
	earned := map[string]bool{}
	counts := BadgeCounts{TasksCompleted: 1, NotesCreated: 1}

	badges := EvaluateCatalog(1, models.Stats{}, counts, earned, time.Now())

	assert.ElementsMatch(t, []string{"first_task", "first_note"}, badgeIDs(badges))
}

func TestEvaluateCatalogSkipsAlreadyEarned(t *testing.T) {
	earned := map[string]bool{"first_task": true}
	counts := BadgeCounts{TasksCompleted: 5}

	badges := EvaluateCatalog(1, models.Stats{}, counts, earned, time.Now())

	assert.Empty(t, badges)
}

func TestEvaluateCatalogIdempotent(t *testing.T) {
	earned := map[string]bool{}
	counts := BadgeCounts{TasksCompleted: 12, HabitsCreated: 1}
	stats := models.Stats{TotalPomodoros: 2, TotalFocusMinutes: 90}

	first := EvaluateCatalog(1, stats, counts, earned, time.Now())
	assert.NotEmpty(t, first)

	// The earned map was extended in place, so a second pass over the same
	// snapshot grants nothing.
	second := EvaluateCatalog(1, stats, counts, earned, time.Now())
	assert.Empty(t, second)
}

func TestEvaluateCatalogMetaBadgeSamePass(t *testing.T) {
	// 13 of 14 regular badges already earned; the snapshot qualifies the
	// last one, so total_mastery must land in the same pass.
	earned := map[string]bool{}
	for _, def := range BadgeCatalog {
		if def.MetaCheck == nil && def.ID != "focus_3000" {
			earned[def.ID] = true
		}
	}

	stats := models.Stats{TotalFocusMinutes: 3000}
	badges := EvaluateCatalog(1, stats, BadgeCounts{}, earned, time.Now())

	assert.ElementsMatch(t, []string{"focus_3000", "total_mastery"}, badgeIDs(badges))
}

func TestEvaluateCatalogMetaBadgeNotEarnedEarly(t *testing.T) {
	earned := map[string]bool{"first_task": true}
	badges := EvaluateCatalog(1, models.Stats{}, BadgeCounts{}, earned, time.Now())
	assert.NotContains(t, badgeIDs(badges), "total_mastery")
}

func TestEvaluateCatalogRecordsGrantTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	badges := EvaluateCatalog(7, models.Stats{}, BadgeCounts{TasksCompleted: 1}, map[string]bool{}, now)

	require.Len(t, badges, 1)
	assert.Equal(t, uint(7), badges[0].UserID)
	assert.Equal(t, now, badges[0].EarnedAt)
	assert.NotEmpty(t, badges[0].Name)
	assert.NotEmpty(t, badges[0].Tier)
}

func TestCheckSafelyRecoversFromPanic(t *testing.T) {
	def := BadgeDef{
		ID:    "broken",
		Check: func(models.Stats, BadgeCounts) bool { panic("boom") },
	}
	assert.False(t, checkSafely(def, models.Stats{}, BadgeCounts{}))
}

func TestBadgeThresholds(t *testing.T) {
	byID := map[string]BadgeDef{}
	for _, def := range BadgeCatalog {
		byID[def.ID] = def
	}

	cases := []struct {
		id     string
		stats  models.Stats
		counts BadgeCounts
		want   bool
	}{
		{"tasks_10", models.Stats{}, BadgeCounts{TasksCompleted: 9}, false},
		{"tasks_10", models.Stats{}, BadgeCounts{TasksCompleted: 10}, true},
		{"streak_3", models.Stats{CurrentStreak: 3}, BadgeCounts{}, true},
		{"streak_7", models.Stats{LongestStreak: 6}, BadgeCounts{}, false},
		{"streak_7", models.Stats{LongestStreak: 7}, BadgeCounts{}, true},
		{"focus_60", models.Stats{TotalFocusMinutes: 60}, BadgeCounts{}, true},
		{"focus_600", models.Stats{TotalFocusMinutes: 599}, BadgeCounts{}, false},
		{"planner_5", models.Stats{}, BadgeCounts{EventsCreated: 5}, true},
		{"tasks_500", models.Stats{}, BadgeCounts{TasksCompleted: 500}, true},
		{"pomo_10", models.Stats{TotalPomodoros: 10}, BadgeCounts{}, true},
	}

	for _, tc := range cases {
		def, ok := byID[tc.id]
		require.True(t, ok, "unknown badge %s", tc.id)
		assert.Equal(t, tc.want, def.Check(tc.stats, tc.counts), "badge %s", tc.id)
	}
}
