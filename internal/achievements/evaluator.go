// Package achievements decides which badges a user has earned and keeps the
// unlocked set in the profile store.
package achievements

import (
	"fmt"
	"math"
	"time"

	"santaswishlist/internal/models"
	"santaswishlist/internal/profilestore"
)

const (
	wishMasterTarget    = 5
	goodChildScore      = 80
	holidaySpiritWindow = 5 // days
	holidaySpiritTarget = 5 // wishes
)

// Predicate reports whether an achievement's condition holds
type Predicate func(wishes []models.Wish, profile models.UserProfile, now time.Time) bool

// Rules maps each catalog id to its unlock condition
var Rules = map[string]Predicate{
	models.AchievementFirstWish: func(wishes []models.Wish, _ models.UserProfile, _ time.Time) bool {
		return len(wishes) > 0
	},
	models.AchievementWishMaster: func(wishes []models.Wish, _ models.UserProfile, _ time.Time) bool {
		return len(wishes) >= wishMasterTarget
	},
	models.AchievementGoodChild: func(_ []models.Wish, profile models.UserProfile, _ time.Time) bool {
		return profile.NiceScore >= goodChildScore
	},
	models.AchievementHolidaySpirit: func(wishes []models.Wish, _ models.UserProfile, now time.Time) bool {
		return RecentWishCount(wishes, now) > 0
	},
}

// DaysSince returns the whole days elapsed from t to now, rounded down
func DaysSince(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// RecentWishCount counts wishes updated within the trailing holiday window, inclusive
func RecentWishCount(wishes []models.Wish, now time.Time) int {
	count := 0
	for _, w := range wishes {
		if DaysSince(w.UpdatedAt, now) <= holidaySpiritWindow {
			count++
		}
	}
	return count
}

// Evaluator unlocks achievements and persists them through a profile store
type Evaluator struct {
	store    *profilestore.Store
	now      func() time.Time
	onUnlock func(unlocked []models.Achievement)
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithClock overrides the evaluation time source
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithUnlockHook registers fn to receive newly unlocked achievements after
// they are persisted. It is not called when nothing unlocked.
func WithUnlockHook(fn func(unlocked []models.Achievement)) Option {
	return func(e *Evaluator) { e.onUnlock = fn }
}

// NewEvaluator creates an evaluator over store
func NewEvaluator(store *profilestore.Store, opts ...Option) *Evaluator {
	e := &Evaluator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckAchievements unlocks every locked achievement whose condition holds for
// wishes and profile, and returns the full stored list afterwards. Each unlock
// persists the list and increments the stored profile's unlock counter.
// Unlocked achievements are never evaluated again, so repeated calls are safe.
func (e *Evaluator) CheckAchievements(wishes []models.Wish, profile models.UserProfile) ([]models.Achievement, error) {
	var (
		list     []models.Achievement
		unlocked []models.Achievement
	)

	err := e.store.WithLock(func() error {
		now := e.now()
		list = e.store.Achievements()

		for _, def := range models.DefaultAchievements() {
			idx := indexOf(list, def.ID)
			if idx < 0 || list[idx].IsUnlocked() {
				continue
			}
			if rule, ok := Rules[def.ID]; !ok || !rule(wishes, profile, now) {
				continue
			}

			at := now
			list[idx].UnlockedAt = &at
			if err := e.store.SetAchievements(list); err != nil {
				return fmt.Errorf("failed to persist %s unlock: %w", def.ID, err)
			}

			stored := e.store.Profile()
			stored.Stats.AchievementsUnlocked++
			if err := e.store.SetProfile(stored); err != nil {
				return fmt.Errorf("failed to persist unlock counter: %w", err)
			}

			unlocked = append(unlocked, list[idx])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(unlocked) > 0 && e.onUnlock != nil {
		e.onUnlock(unlocked)
	}
	return list, nil
}

// AchievementProgress returns a 0-100 completion percentage per catalog id,
// regardless of whether the achievement is already unlocked
func (e *Evaluator) AchievementProgress(wishes []models.Wish, profile models.UserProfile) map[string]float64 {
	return Progress(wishes, profile, e.now())
}

// Progress computes completion percentages at the given time
func Progress(wishes []models.Wish, profile models.UserProfile, now time.Time) map[string]float64 {
	firstWish := 0.0
	if len(wishes) > 0 {
		firstWish = 100
	}

	return map[string]float64{
		models.AchievementFirstWish:     firstWish,
		models.AchievementWishMaster:    percent(len(wishes), wishMasterTarget),
		models.AchievementGoodChild:     percent(profile.NiceScore, goodChildScore),
		models.AchievementHolidaySpirit: percent(RecentWishCount(wishes, now), holidaySpiritTarget),
	}
}

func percent(value, target int) float64 {
	p := float64(value) / float64(target) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// UnlockedAchievements returns the stored achievements that have been earned
func (e *Evaluator) UnlockedAchievements() []models.Achievement {
	return filter(e.store.Achievements(), true)
}

// LockedAchievements returns the stored achievements not yet earned
func (e *Evaluator) LockedAchievements() []models.Achievement {
	return filter(e.store.Achievements(), false)
}

func filter(list []models.Achievement, unlocked bool) []models.Achievement {
	out := []models.Achievement{}
	for _, a := range list {
		if a.IsUnlocked() == unlocked {
			out = append(out, a)
		}
	}
	return out
}

func indexOf(list []models.Achievement, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
