// Package profilestore is the per-user key/value record store holding the
// wish snapshot, the user profile and the achievement list as JSON documents.
package profilestore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/models"
)

// Record keys
const (
	KeyWishes       = "santa_wishes"
	KeyProfile      = "santa_user_profile"
	KeyAchievements = "santa_achievements"
)

// Backend persists raw record values
type Backend interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store reads and writes typed records over a Backend.
// Reads never fail: an absent, unreadable or undecodable record yields the default.
type Store struct {
	backend Backend
	mu      *sync.Mutex
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used to report unreadable records
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the clock used when seeding records
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func withMutex(mu *sync.Mutex) Option {
	return func(s *Store) { s.mu = mu }
}

// New creates a store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		mu:      &sync.Mutex{},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get decodes the record at key, returning def when it is missing or invalid
func Get[T any](s *Store, key string, def T) T {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn("failed to read record", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.Warn("discarding undecodable record", zap.String("key", key), zap.Error(err))
		return def
	}
	return value
}

// Set encodes value as JSON and stores it at key
func (s *Store) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// WithLock runs fn while holding the store's lock. Stores created by the same
// Factory for the same user share one lock.
func (s *Store) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Wishes returns the wish snapshot, or an empty list
func (s *Store) Wishes() []models.Wish {
	wishes := Get(s, KeyWishes, []models.Wish{})
	if wishes == nil {
		return []models.Wish{}
	}
	return wishes
}

// SetWishes replaces the wish snapshot
func (s *Store) SetWishes(wishes []models.Wish) error {
	if wishes == nil {
		wishes = []models.Wish{}
	}
	return s.Set(KeyWishes, wishes)
}

// Profile returns the stored profile, or the default profile
func (s *Store) Profile() models.UserProfile {
	return Get(s, KeyProfile, models.DefaultUserProfile())
}

// SetProfile replaces the stored profile
func (s *Store) SetProfile(profile models.UserProfile) error {
	return s.Set(KeyProfile, profile)
}

// Achievements returns the stored achievement list, or the locked catalog
func (s *Store) Achievements() []models.Achievement {
	achievements := Get(s, KeyAchievements, models.DefaultAchievements())
	if achievements == nil {
		return models.DefaultAchievements()
	}
	return achievements
}

// SetAchievements replaces the stored achievement list
func (s *Store) SetAchievements(achievements []models.Achievement) error {
	return s.Set(KeyAchievements, achievements)
}

// Initialize seeds a profile for username, the locked catalog and an empty
// wish list, unless a profile with a username is already stored. An empty
// avatar leaves the profile without one.
// It reports whether seeding happened.
func (s *Store) Initialize(username, avatar string) (bool, error) {
	if s.Profile().Username != "" {
		return false, nil
	}

	now := s.now()
	profile := models.DefaultUserProfile()
	profile.Username = username
	if avatar != "" {
		profile.Avatar = &avatar
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.SetProfile(profile); err != nil {
		return false, err
	}
	if err := s.SetAchievements(models.DefaultAchievements()); err != nil {
		return false, err
	}
	if err := s.SetWishes(nil); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every record
func (s *Store) Clear() error {
	for _, key := range []string{KeyWishes, KeyProfile, KeyAchievements} {
		if err := s.backend.Delete(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}
