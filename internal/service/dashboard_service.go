package service

import (
	"context"
	"fmt"
	"time"

	"santaswishlist/internal/holiday"
	"santaswishlist/internal/models"
	"santaswishlist/internal/statistics"
)

// Dashboard is everything the dashboard page shows
type Dashboard struct {
	Profile      models.UserProfile    `json:"profile"`
	Wishes       []models.Wish         `json:"wishes"`
	Statistics   models.WishStatistics `json:"statistics"`
	Achievements []models.Achievement  `json:"achievements"`
	Progress     map[string]float64    `json:"progress"`
	Countdown    holiday.TimeLeft      `json:"countdown"`
}

// DashboardService assembles the dashboard view
type DashboardService struct {
	wishes       *WishService
	profiles     *ProfileService
	achievements *AchievementService
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(wishes *WishService, profiles *ProfileService, achievements *AchievementService) *DashboardService {
	return &DashboardService{
		wishes:       wishes,
		profiles:     profiles,
		achievements: achievements,
		now:          time.Now,
	}
}

// GetDashboard loads the user's profile and wishes, checks achievements and
// derives statistics. Statistics cover every wish; Wishes honours filter.
func (s *DashboardService) GetDashboard(ctx context.Context, user *models.User, filter models.WishFilter) (*Dashboard, error) {
	profile, err := s.profiles.GetProfile(user)
	if err != nil {
		return nil, err
	}

	all, err := s.wishes.ListWishes(user.ID, models.WishFilter{})
	if err != nil {
		return nil, err
	}

	list, err := s.achievements.Check(ctx, user, all, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to check achievements: %w", err)
	}

	// Check may have bumped the unlock counter
	profile, err = s.profiles.GetProfile(user)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Wish, 0, len(all))
	for _, w := range all {
		if filter.Matches(w) {
			filtered = append(filtered, w)
		}
	}

	return &Dashboard{
		Profile:      profile,
		Wishes:       filtered,
		Statistics:   statistics.CalculateWishStatistics(all),
		Achievements: list,
		Progress:     s.achievements.Progress(all, profile),
		Countdown:    holiday.Countdown(s.now()),
	}, nil
}
