package services

import (
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/utils"
)

// BadgeCounts carries the aggregate counts that several predicates share.
// They are fetched once per award pass instead of per predicate.
type BadgeCounts struct {
	TasksCompleted int64
	HabitsCreated  int64
	NotesCreated   int64
	EventsCreated  int64
}

// BadgeDef is one catalog entry. Regular definitions provide Check; meta
// definitions (total_mastery) provide MetaCheck instead and are evaluated
// in a second phase so they observe badges earned earlier in the same pass.
type BadgeDef struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Tier        string
	Check       func(stats models.Stats, counts BadgeCounts) bool
	MetaCheck   func(earned map[string]bool) bool
}

// BadgeCatalog is the fixed, ordered achievement catalog. IDs are stable
// persistence keys and must never change.
var BadgeCatalog = []BadgeDef{
	{
		ID: "first_task", Name: "First Step", Icon: "🎯", Tier: models.TierBronze,
		Description: "Complete your very first task",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.TasksCompleted >= 1 },
	},
	{
		ID: "first_pomo", Name: "Tomato Timer", Icon: "🍅", Tier: models.TierBronze,
		Description: "Complete your first Pomodoro session",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.TotalPomodoros >= 1 },
	},
	{
		ID: "first_habit", Name: "Habit Seed", Icon: "🌱", Tier: models.TierBronze,
		Description: "Create and complete your first habit",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.HabitsCreated >= 1 },
	},
	{
		ID: "first_note", Name: "Scribe", Icon: "📝", Tier: models.TierBronze,
		Description: "Write your first note",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.NotesCreated >= 1 },
	},
	{
		ID: "tasks_10", Name: "Momentum", Icon: "⚡", Tier: models.TierSilver,
		Description: "Complete 10 tasks",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.TasksCompleted >= 10 },
	},
	{
		ID: "streak_3", Name: "Streak Seeker", Icon: "🔥", Tier: models.TierSilver,
		Description: "Maintain a 3-day habit streak",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.CurrentStreak >= 3 },
	},
	{
		ID: "focus_60", Name: "Flow State", Icon: "⏱", Tier: models.TierSilver,
		Description: "Log 1 hour of focused work",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.TotalFocusMinutes >= 60 },
	},
	{
		ID: "planner_5", Name: "Day Architect", Icon: "📅", Tier: models.TierSilver,
		Description: "Create 5 schedule events",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.EventsCreated >= 5 },
	},
	{
		ID: "tasks_100", Name: "Centurion", Icon: "💯", Tier: models.TierGold,
		Description: "Complete 100 tasks",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.TasksCompleted >= 100 },
	},
	{
		ID: "pomo_10", Name: "Sprint Legend", Icon: "🏃", Tier: models.TierGold,
		Description: "Complete 10 Pomodoro sessions",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.TotalPomodoros >= 10 },
	},
	{
		ID: "focus_600", Name: "Focus Oracle", Icon: "🔮", Tier: models.TierGold,
		Description: "Log 10 hours of focused work",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.TotalFocusMinutes >= 600 },
	},
	{
		ID: "streak_7", Name: "Flame Keeper", Icon: "🔥", Tier: models.TierGold,
		Description: "Maintain a 7-day habit streak",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.LongestStreak >= 7 },
	},
	{
		ID: "tasks_500", Name: "Legend", Icon: "👑", Tier: models.TierPlatinum,
		Description: "Complete 500 tasks — a true legend",
		Check:       func(_ models.Stats, c BadgeCounts) bool { return c.TasksCompleted >= 500 },
	},
	{
		ID: "focus_3000", Name: "Flow God", Icon: "🧘", Tier: models.TierPlatinum,
		Description: "Log 50 hours of focused work",
		Check:       func(s models.Stats, _ BadgeCounts) bool { return s.TotalFocusMinutes >= 3000 },
	},
	{
		ID: "total_mastery", Name: "Total Mastery", Icon: "🌟", Tier: models.TierPlatinum,
		Description: "Earn all other 14 badges",
	},
}

// The meta predicate ranges over the catalog, so a closure in the literal
// itself would be an initialization cycle; it is attached here instead.
func init() {
	for i := range BadgeCatalog {
		if BadgeCatalog[i].ID != "total_mastery" {
			continue
		}
		BadgeCatalog[i].MetaCheck = func(earned map[string]bool) bool {
			for _, def := range BadgeCatalog {
				if def.Check == nil {
					continue
				}
				if !earned[def.ID] {
					return false
				}
			}
			return true
		}
	}
}

// CatalogEntry is a catalog definition merged with the user's earned state.
type CatalogEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Tier        string     `json:"tier"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at"`
}

// BadgeService evaluates the achievement catalog and grants newly
// qualifying badges exactly once per user.
type BadgeService struct {
	db *gorm.DB
}

// NewBadgeService creates a BadgeService.
func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{db: db}
}

// Award evaluates every not-yet-earned catalog entry for the user and
// persists the newly qualifying badges in one batch. It returns the new
// badges, or an empty slice when nothing qualifies or anything fails:
// awarding is a best-effort side channel of the triggering action and never
// surfaces an error to it.
func (s *BadgeService) Award(userID uint) []models.EarnedBadge {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Sugar.Errorf("badges: failed to load user %d: %v", userID, err)
		return []models.EarnedBadge{}
	}

	var existing []models.EarnedBadge
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		utils.Sugar.Errorf("badges: failed to load earned set for user %d: %v", userID, err)
		return []models.EarnedBadge{}
	}
	earned := make(map[string]bool, len(existing))
	for _, b := range existing {
		earned[b.BadgeID] = true
	}

	counts, err := s.fetchCounts(userID)
	if err != nil {
		utils.Sugar.Errorf("badges: failed to prefetch counts for user %d: %v", userID, err)
		return []models.EarnedBadge{}
	}

	newBadges := EvaluateCatalog(userID, user.Stats, counts, earned, time.Now())
	if len(newBadges) == 0 {
		return newBadges
	}

	// The composite unique index on (user_id, badge_id) plus DoNothing
	// keeps the grant idempotent even when two passes race.
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&newBadges).Error; err != nil {
		utils.Sugar.Errorf("badges: failed to persist %d new badges for user %d: %v", len(newBadges), userID, err)
		return []models.EarnedBadge{}
	}

	return newBadges
}

// EvaluateCatalog runs the two-phase catalog evaluation against a stats
// snapshot. Phase 1 evaluates the regular predicates; phase 2 evaluates
// meta predicates against the union of previously-earned and phase-1 ids,
// so total_mastery can complete in the same pass as the 14th badge.
// The earned map is extended in place with every id granted here.
func EvaluateCatalog(userID uint, stats models.Stats, counts BadgeCounts, earned map[string]bool, now time.Time) []models.EarnedBadge {
	newBadges := []models.EarnedBadge{}

	grant := func(def BadgeDef) {
		newBadges = append(newBadges, models.EarnedBadge{
			UserID:      userID,
			BadgeID:     def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Tier:        def.Tier,
			EarnedAt:    now,
		})
		earned[def.ID] = true
	}

	for _, def := range BadgeCatalog {
		if def.MetaCheck != nil || earned[def.ID] {
			continue
		}
		if checkSafely(def, stats, counts) {
			grant(def)
		}
	}

	for _, def := range BadgeCatalog {
		if def.MetaCheck == nil || earned[def.ID] {
			continue
		}
		if def.MetaCheck(earned) {
			grant(def)
		}
	}

	return newBadges
}

// checkSafely runs a predicate, treating a panic as "not yet earned" so one
// broken definition cannot block the rest of the pass.
func checkSafely(def BadgeDef, stats models.Stats, counts BadgeCounts) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.Sugar.Warnf("badges: predicate %s panicked, skipping: %v", def.ID, r)
			ok = false
		}
	}()
	return def.Check(stats, counts)
}

// fetchCounts loads the shared aggregate counts with independent parallel
// queries.
func (s *BadgeService) fetchCounts(userID uint) (BadgeCounts, error) {
	var c BadgeCounts
	var g errgroup.Group

	g.Go(func() error {
		return s.db.Model(&models.Task{}).
			Where("user_id = ? AND status = ?", userID, models.TaskCompleted).
			Count(&c.TasksCompleted).Error
	})
	g.Go(func() error {
		return s.db.Model(&models.Habit{}).Where("user_id = ?", userID).Count(&c.HabitsCreated).Error
	})
	g.Go(func() error {
		return s.db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&c.NotesCreated).Error
	})
	g.Go(func() error {
		return s.db.Model(&models.ScheduleEvent{}).Where("user_id = ?", userID).Count(&c.EventsCreated).Error
	})

	return c, g.Wait()
}

// Catalog returns the full catalog merged with the user's earned state,
// along with the raw earned list.
func (s *BadgeService) Catalog(userID uint) ([]CatalogEntry, []models.EarnedBadge, error) {
	var earned []models.EarnedBadge
	if err := s.db.Where("user_id = ?", userID).Order("earned_at ASC").Find(&earned).Error; err != nil {
		return nil, nil, err
	}

	earnedByID := make(map[string]models.EarnedBadge, len(earned))
	for _, b := range earned {
		earnedByID[b.BadgeID] = b
	}

	entries := make([]CatalogEntry, 0, len(BadgeCatalog))
	for _, def := range BadgeCatalog {
		entry := CatalogEntry{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Tier:        def.Tier,
		}
		if b, ok := earnedByID[def.ID]; ok {
			entry.Earned = true
			at := b.EarnedAt
			entry.EarnedAt = &at
		}
		entries = append(entries, entry)
	}
	return entries, earned, nil
}
