package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/achievements"
	"santaswishlist/internal/models"
	"santaswishlist/internal/profilestore"
	"santaswishlist/internal/realtime"
)

// AchievementOverview splits the achievement list for display
type AchievementOverview struct {
	Unlocked []models.Achievement `json:"unlocked"`
	Locked   []models.Achievement `json:"locked"`
	Progress map[string]float64   `json:"progress"`
}

// AchievementService runs the achievement evaluator for a user and announces unlocks
type AchievementService struct {
	stores    *profilestore.Factory
	publisher realtime.Publisher
	email     *EmailService
	now       func() time.Time
	logger    *zap.Logger
}

// NewAchievementService creates a new achievement service
func NewAchievementService(stores *profilestore.Factory, publisher realtime.Publisher, email *EmailService, logger *zap.Logger) *AchievementService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{
		stores:    stores,
		publisher: publisher,
		email:     email,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *AchievementService) evaluator(userID int64, opts ...achievements.Option) *achievements.Evaluator {
	opts = append([]achievements.Option{achievements.WithClock(s.now)}, opts...)
	return achievements.NewEvaluator(s.stores.ForUser(userID), opts...)
}

// Check unlocks whatever wishes and profile now qualify for and returns the
// full achievement list. Unlocks are pushed to the user's realtime clients
// and emailed when the user has notifications on.
func (s *AchievementService) Check(ctx context.Context, user *models.User, wishes []models.Wish, profile models.UserProfile) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	e := s.evaluator(user.ID, achievements.WithUnlockHook(func(a []models.Achievement) {
		unlocked = a
	}))

	list, err := e.CheckAchievements(wishes, profile)
	if err != nil {
		return nil, err
	}

	if len(unlocked) > 0 {
		s.announce(ctx, user, profile, unlocked)
	}
	return list, nil
}

func (s *AchievementService) announce(ctx context.Context, user *models.User, profile models.UserProfile, unlocked []models.Achievement) {
	for _, a := range unlocked {
		s.logger.Info("achievement unlocked",
			zap.Int64("user_id", user.ID),
			zap.String("achievement", a.ID))
		s.publisher.Publish(user.ID, realtime.Event{Type: realtime.EventAchievementUnlocked, Payload: a})
	}

	if !profile.Preferences.Notifications || !s.email.IsEnabled() {
		return
	}
	if err := s.email.SendAchievementEmail(ctx, user.Email, profile.Username, unlocked); err != nil {
		s.logger.Warn("failed to send achievement email",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}

// Overview returns the unlocked and locked partitions and progress toward each
func (s *AchievementService) Overview(userID int64, wishes []models.Wish, profile models.UserProfile) AchievementOverview {
	e := s.evaluator(userID)
	return AchievementOverview{
		Unlocked: e.UnlockedAchievements(),
		Locked:   e.LockedAchievements(),
		Progress: e.AchievementProgress(wishes, profile),
	}
}

// Progress returns completion percentages toward each achievement
func (s *AchievementService) Progress(wishes []models.Wish, profile models.UserProfile) map[string]float64 {
	return achievements.Progress(wishes, profile, s.now())
}
