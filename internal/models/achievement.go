package models

import "time"

// Achievement identifiers
const (
	AchievementFirstWish     = "first_wish"
	AchievementWishMaster    = "wish_master"
	AchievementGoodChild     = "good_child"
	AchievementHolidaySpirit = "holiday_spirit"
)

// Achievement is a badge that unlocks once and stays unlocked
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// IsUnlocked reports whether the achievement has been earned
func (a Achievement) IsUnlocked() bool {
	return a.UnlockedAt != nil
}

// DefaultAchievements returns a fresh copy of the catalog with everything locked
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:          AchievementFirstWish,
			Title:       "First Wish",
			Description: "Made your first wish to Santa!",
			Icon:        "🎁",
		},
		{
			ID:          AchievementWishMaster,
			Title:       "Wish Master",
			Description: "Made 5 wishes to Santa!",
			Icon:        "⭐",
		},
		{
			ID:          AchievementGoodChild,
			Title:       "Very Good Child",
			Description: "Maintained a nice score above 80!",
			Icon:        "😇",
		},
		{
			ID:          AchievementHolidaySpirit,
			Title:       "Holiday Spirit",
			Description: "Logged in 5 days in a row!",
			Icon:        "🎄",
		},
	}
}
