package models

import "time"

// DefaultNiceScore is the score given to new users and to users with no wishes
const DefaultNiceScore = 75

// ProfileStats holds the counters shown on the dashboard
type ProfileStats struct {
	TotalWishes          int `json:"totalWishes"`
	ApprovedWishes       int `json:"approvedWishes"`
	DeliveredWishes      int `json:"deliveredWishes"`
	AchievementsUnlocked int `json:"achievementsUnlocked"`
}

// Preferences are user-selected display and notification settings
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

// UserProfile is the per-user record kept in the profile store
type UserProfile struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Avatar       *string       `json:"avatar,omitempty"`
	NiceScore    int           `json:"niceScore"`
	Achievements []Achievement `json:"achievements"`
	Preferences  Preferences   `json:"preferences"`
	Stats        ProfileStats  `json:"stats"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty"`
}

// DefaultUserProfile returns the profile used when none has been stored yet
func DefaultUserProfile() UserProfile {
	return UserProfile{
		ID:           "1",
		Username:     "",
		NiceScore:    DefaultNiceScore,
		Achievements: []Achievement{},
		Preferences: Preferences{
			Theme:         "light",
			Notifications: true,
			Language:      "en",
		},
	}
}

// ProfileUpdate carries a partial profile update
type ProfileUpdate struct {
	Username    *string      `json:"username,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}
