package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/realtime"
	"santaswishlist/internal/repository"
	"santaswishlist/internal/validation"
)

// WishService handles wish business logic
type WishService struct {
	wishRepo     *repository.WishRepository
	profiles     *ProfileService
	achievements *AchievementService
	publisher    realtime.Publisher
	now          func() time.Time
	logger       *zap.Logger
}

// NewWishService creates a new wish service
func NewWishService(wishRepo *repository.WishRepository, profiles *ProfileService, achievements *AchievementService, publisher realtime.Publisher, logger *zap.Logger) *WishService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishService{
		wishRepo:     wishRepo,
		profiles:     profiles,
		achievements: achievements,
		publisher:    publisher,
		now:          time.Now,
		logger:       logger,
	}
}

// ListWishes returns the user's wishes matching filter, newest first
func (s *WishService) ListWishes(userID int64, filter models.WishFilter) ([]models.Wish, error) {
	wishes, err := s.wishRepo.GetUserWishes(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}

	filtered := make([]models.Wish, 0, len(wishes))
	for _, w := range wishes {
		if filter.Matches(w) {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// CreateWish adds a pending wish for the user
func (s *WishService) CreateWish(ctx context.Context, user *models.User, title, description string, category models.WishCategory) (*models.Wish, error) {
	if err := validation.ValidateWishTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateWishDescription(description); err != nil {
		return nil, err
	}
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}

	now := s.now()
	wish := &models.Wish{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    category,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.wishRepo.CreateWish(wish); err != nil {
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}

	s.publisher.Publish(user.ID, realtime.Event{Type: realtime.EventWishCreated, Payload: wish})
	s.refresh(ctx, user)
	return wish, nil
}

// UpdateWish applies a partial update to one of the user's wishes
func (s *WishService) UpdateWish(ctx context.Context, user *models.User, wishID string, update models.WishUpdate) (*models.Wish, error) {
	wish, err := s.getOwnedWish(user.ID, wishID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if err := validation.ValidateWishTitle(*update.Title); err != nil {
			return nil, err
		}
		wish.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		if err := validation.ValidateWishDescription(*update.Description); err != nil {
			return nil, err
		}
		wish.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		if err := validation.ValidateCategory(*update.Category); err != nil {
			return nil, err
		}
		wish.Category = *update.Category
	}
	if update.Status != nil {
		if err := validation.ValidateStatus(*update.Status); err != nil {
			return nil, err
		}
		if update.Status.Rank() < wish.Status.Rank() {
			s.logger.Warn("wish status moved backwards",
				zap.String("wish_id", wish.ID),
				zap.String("from", string(wish.Status)),
				zap.String("to", string(*update.Status)))
		}
		wish.Status = *update.Status
	}

	wish.UpdatedAt = s.now()
	if err := s.wishRepo.UpdateWish(wish); err != nil {
		return nil, fmt.Errorf("failed to update wish: %w", err)
	}

	s.publisher.Publish(user.ID, realtime.Event{Type: realtime.EventWishUpdated, Payload: wish})
	s.refresh(ctx, user)
	return wish, nil
}

// DeleteWish removes one of the user's wishes
func (s *WishService) DeleteWish(ctx context.Context, user *models.User, wishID string) error {
	if _, err := s.getOwnedWish(user.ID, wishID); err != nil {
		return err
	}

	if err := s.wishRepo.DeleteWish(wishID); err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}

	s.publisher.Publish(user.ID, realtime.Event{Type: realtime.EventWishDeleted, Payload: map[string]string{"id": wishID}})
	s.refresh(ctx, user)
	return nil
}

func (s *WishService) getOwnedWish(userID int64, wishID string) (*models.Wish, error) {
	wish, err := s.wishRepo.GetWish(wishID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wish: %w", err)
	}
	if wish == nil {
		return nil, ErrWishNotFound
	}
	if wish.UserID != userID {
		return nil, ErrForbidden
	}
	return wish, nil
}

// refresh recomputes profile stats and checks achievements after a mutation.
// The wish row is already committed, so failures here are logged only.
func (s *WishService) refresh(ctx context.Context, user *models.User) {
	profile, wishes, err := s.profiles.SyncStats(user, func() ([]models.Wish, error) {
		return s.wishRepo.GetUserWishes(user.ID)
	})
	if err != nil {
		s.logger.Error("failed to sync profile stats", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	if _, err := s.achievements.Check(ctx, user, wishes, profile); err != nil {
		s.logger.Error("failed to check achievements", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}
