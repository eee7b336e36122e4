package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/nickname"
	"santaswishlist/internal/profilestore"
	"santaswishlist/internal/realtime"
	"santaswishlist/internal/statistics"
	"santaswishlist/internal/validation"
)

// ProfileService owns the per-user profile record
type ProfileService struct {
	stores    *profilestore.Factory
	publisher realtime.Publisher
	jitter    statistics.Jitter
	now       func() time.Time
	logger    *zap.Logger
}

// NewProfileService creates a new profile service. A nil jitter uses the
// default random source.
func NewProfileService(stores *profilestore.Factory, publisher realtime.Publisher, jitter statistics.Jitter, logger *zap.Logger) *ProfileService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if jitter == nil {
		jitter = statistics.DefaultJitter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		stores:    stores,
		publisher: publisher,
		jitter:    jitter,
		now:       time.Now,
		logger:    logger,
	}
}

// Initialize seeds the profile, achievement catalog and wish snapshot for a
// user who has none yet
func (s *ProfileService) Initialize(user *models.User) error {
	avatar, err := nickname.RandomAvatar()
	if err != nil {
		s.logger.Warn("failed to pick avatar", zap.Int64("user_id", user.ID), zap.Error(err))
		avatar = ""
	}

	store := s.stores.ForUser(user.ID)
	return store.WithLock(func() error {
		seeded, err := store.Initialize(displayName(user), avatar)
		if err != nil {
			return fmt.Errorf("failed to initialize profile: %w", err)
		}
		if seeded {
			s.logger.Info("profile created", zap.Int64("user_id", user.ID))
		}
		return nil
	})
}

// GetProfile returns the user's profile, creating it on first access. The
// returned profile carries the current achievement list.
func (s *ProfileService) GetProfile(user *models.User) (models.UserProfile, error) {
	store := s.stores.ForUser(user.ID)
	if store.Profile().Username == "" {
		if err := s.Initialize(user); err != nil {
			return models.UserProfile{}, err
		}
	}

	profile := store.Profile()
	profile.Achievements = store.Achievements()
	return profile, nil
}

// UpdateProfile applies the non-nil fields of update
func (s *ProfileService) UpdateProfile(user *models.User, update models.ProfileUpdate) (models.UserProfile, error) {
	if update.Username != nil {
		if err := validation.ValidateUsername(*update.Username); err != nil {
			return models.UserProfile{}, err
		}
	}
	if update.Avatar != nil && *update.Avatar != "" && !nickname.IsAvatar(*update.Avatar) {
		return models.UserProfile{}, validation.ValidationError{Field: "avatar", Message: "unknown avatar"}
	}
	if update.Preferences != nil {
		if err := validation.ValidatePreferences(*update.Preferences); err != nil {
			return models.UserProfile{}, err
		}
	}

	if _, err := s.GetProfile(user); err != nil {
		return models.UserProfile{}, err
	}

	store := s.stores.ForUser(user.ID)
	var profile models.UserProfile
	err := store.WithLock(func() error {
		profile = store.Profile()
		if update.Username != nil {
			profile.Username = strings.TrimSpace(*update.Username)
		}
		if update.Avatar != nil {
			if *update.Avatar == "" {
				profile.Avatar = nil
			} else {
				avatar := *update.Avatar
				profile.Avatar = &avatar
			}
		}
		if update.Preferences != nil {
			profile.Preferences = *update.Preferences
		}
		profile.UpdatedAt = s.now()
		return store.SetProfile(profile)
	})
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	profile.Achievements = store.Achievements()
	s.publisher.Publish(user.ID, realtime.Event{Type: realtime.EventProfileUpdated, Payload: profile})
	return profile, nil
}

// SyncStats recomputes wish counters and the nice score from the wishes load
// returns and mirrors them into the store. load runs under the user's store
// lock, so concurrent syncs never write an older wish list over a newer one.
// The unlocked achievement counter is kept.
func (s *ProfileService) SyncStats(user *models.User, load func() ([]models.Wish, error)) (models.UserProfile, []models.Wish, error) {
	if _, err := s.GetProfile(user); err != nil {
		return models.UserProfile{}, nil, err
	}

	store := s.stores.ForUser(user.ID)
	var (
		profile models.UserProfile
		wishes  []models.Wish
	)
	err := store.WithLock(func() error {
		var err error
		if wishes, err = load(); err != nil {
			return fmt.Errorf("failed to load wishes: %w", err)
		}
		profile = store.Profile()

		stats := statistics.ProfileStats(wishes)
		stats.AchievementsUnlocked = profile.Stats.AchievementsUnlocked
		profile.Stats = stats
		profile.NiceScore = statistics.CalculateNiceScore(statistics.ScoreInput{
			ApprovedWishes: stats.ApprovedWishes,
			TotalWishes:    stats.TotalWishes,
		}, s.jitter)
		profile.UpdatedAt = s.now()

		if err := store.SetWishes(wishes); err != nil {
			return err
		}
		return store.SetProfile(profile)
	})
	if err != nil {
		return models.UserProfile{}, nil, fmt.Errorf("failed to sync profile stats: %w", err)
	}
	return profile, wishes, nil
}

func displayName(user *models.User) string {
	if name := strings.TrimSpace(user.Username); name != "" {
		return name
	}
	return nickname.FromEmail(user.Email)
}

type noopPublisher struct{}

func (noopPublisher) Publish(int64, realtime.Event) {}
