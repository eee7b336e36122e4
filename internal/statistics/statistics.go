// Package statistics derives counters, the activity feed and the nice score
// from a user's wishes.
package statistics

import (
	"math"
	"math/rand"
	"sort"

	"santaswishlist/internal/models"
)

// MaxRecentActivity caps the activity feed
const MaxRecentActivity = 10

// CalculateWishStatistics folds wishes into per-category and per-status
// counts and the newest-first activity feed. Categories and statuses with no
// wishes are absent from the maps.
func CalculateWishStatistics(wishes []models.Wish) models.WishStatistics {
	stats := models.WishStatistics{
		TotalWishes:    len(wishes),
		ByCategory:     make(map[models.WishCategory]int),
		ByStatus:       make(map[models.WishStatus]int),
		RecentActivity: []models.ActivityEntry{},
	}

	activity := make([]models.ActivityEntry, 0, len(wishes)*2)
	for _, w := range wishes {
		stats.ByCategory[w.Category]++
		stats.ByStatus[w.Status]++

		activity = append(activity,
			models.ActivityEntry{Date: w.CreatedAt, Action: models.ActionCreated, WishID: w.ID},
			models.ActivityEntry{Date: w.UpdatedAt, Action: models.ActionUpdated, WishID: w.ID},
		)
		if w.Status == models.StatusDelivered {
			activity = append(activity, models.ActivityEntry{Date: w.UpdatedAt, Action: models.ActionDelivered, WishID: w.ID})
		}
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Date.After(activity[j].Date)
	})
	if len(activity) > MaxRecentActivity {
		activity = activity[:MaxRecentActivity]
	}
	stats.RecentActivity = append(stats.RecentActivity, activity...)

	return stats
}

// ScoreInput is the part of the profile stats the nice score depends on
type ScoreInput struct {
	ApprovedWishes int
	TotalWishes    int
}

// Jitter returns a small integer perturbation added to the nice score
type Jitter func() int

// DefaultJitter is uniform over [-5, 5]
func DefaultJitter() int {
	return rand.Intn(11) - 5
}

// NoJitter always returns zero
func NoJitter() int { return 0 }

// CalculateNiceScore returns the approval percentage plus jitter, rounded and
// clamped to [0, 100]. With no wishes it returns the default score.
func CalculateNiceScore(in ScoreInput, jitter Jitter) int {
	if in.TotalWishes == 0 {
		return models.DefaultNiceScore
	}
	if jitter == nil {
		jitter = DefaultJitter
	}

	base := float64(in.ApprovedWishes) / float64(in.TotalWishes) * 100
	score := int(math.Round(base + float64(jitter())))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ProfileStats counts total, approved and delivered wishes. The unlocked
// achievement counter is not derived from wishes and is left zero.
func ProfileStats(wishes []models.Wish) models.ProfileStats {
	stats := models.ProfileStats{TotalWishes: len(wishes)}
	for _, w := range wishes {
		switch w.Status {
		case models.StatusApproved:
			stats.ApprovedWishes++
		case models.StatusDelivered:
			stats.DeliveredWishes++
		}
	}
	return stats
}
