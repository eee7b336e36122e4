package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestWishCategoryIsValid(t *testing.T) {
	tests := []struct {
		category WishCategory
		want     bool
	}{
		{CategoryToys, true},
		{CategoryBooks, true},
		{CategoryElectronics, true},
		{CategoryClothes, true},
		{CategoryOther, true},
		{"ponies", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := tt.category.IsValid(); got != tt.want {
				t.Errorf("WishCategory(%q).IsValid() = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestWishStatusRank(t *testing.T) {
	tests := []struct {
		status WishStatus
		want   int
	}{
		{StatusPending, 0},
		{StatusApproved, 1},
		{StatusDelivered, 2},
		{"lost", -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Rank(); got != tt.want {
				t.Errorf("WishStatus(%q).Rank() = %d, want %d", tt.status, got, tt.want)
			}
		})
	}
}

func TestWishFilterMatches(t *testing.T) {
	wish := Wish{ID: "w1", Category: CategoryBooks, Status: StatusApproved}

	tests := []struct {
		name   string
		filter WishFilter
		want   bool
	}{
		{"empty filter", WishFilter{}, true},
		{"matching category", WishFilter{Category: CategoryBooks}, true},
		{"other category", WishFilter{Category: CategoryToys}, false},
		{"matching status", WishFilter{Status: StatusApproved}, true},
		{"other status", WishFilter{Status: StatusPending}, false},
		{"both match", WishFilter{Category: CategoryBooks, Status: StatusApproved}, true},
		{"status mismatch", WishFilter{Category: CategoryBooks, Status: StatusDelivered}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(wish); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultAchievementsAreLockedCopies(t *testing.T) {
	first := DefaultAchievements()
	if len(first) != 4 {
		t.Fatalf("expected 4 achievements, got %d", len(first))
	}
	for _, a := range first {
		if a.IsUnlocked() {
			t.Errorf("achievement %s should start locked", a.ID)
		}
	}

	now := time.Now()
	first[0].UnlockedAt = &now

	second := DefaultAchievements()
	if second[0].IsUnlocked() {
		t.Error("DefaultAchievements() must return a fresh copy")
	}
}

func TestDefaultUserProfile(t *testing.T) {
	profile := DefaultUserProfile()
	if profile.NiceScore != DefaultNiceScore {
		t.Errorf("NiceScore = %d, want %d", profile.NiceScore, DefaultNiceScore)
	}
	if !profile.Preferences.Notifications {
		t.Error("notifications should default to enabled")
	}
	if profile.Stats != (ProfileStats{}) {
		t.Errorf("stats should start at zero, got %+v", profile.Stats)
	}
}
