package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/nickname"
	"santaswishlist/internal/repository"
	"santaswishlist/internal/security"
	"santaswishlist/internal/validation"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	profiles        *ProfileService
	email           *EmailService
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, profiles *ProfileService, email *EmailService, tokens *security.TokenIssuer, sessionDuration time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:        userRepo,
		profiles:        profiles,
		email:           email,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		logger:          logger,
	}
}

// Register creates a new user account with a fresh profile. An empty
// username is derived from the email address.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = nickname.FromEmail(email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, username)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.onboard(ctx, user)
	return user, nil
}

// onboard creates the profile and sends the welcome email. The account
// exists already, so failures are logged and the profile is created lazily later.
func (s *AuthService) onboard(ctx context.Context, user *models.User) {
	if err := s.profiles.Initialize(user); err != nil {
		s.logger.Warn("failed to create profile at signup", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Username); err != nil {
		s.logger.Warn("failed to send welcome email", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// IssueToken returns a bearer token bound to session
func (s *AuthService) IssueToken(session *models.Session) (string, error) {
	return s.tokens.Issue(session.UserID, session.ID, session.ExpiresAt)
}

// ValidateToken verifies a bearer token and the session behind it, so
// logging out also revokes tokens
func (s *AuthService) ValidateToken(token string) (*models.User, string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", ErrSessionNotFound
	}

	user, err := s.ValidateSession(claims.SessionID)
	if err != nil {
		return nil, "", err
	}
	if user.ID != claims.UserID {
		return nil, "", ErrSessionNotFound
	}
	return user, claims.SessionID, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	removed, err := s.userRepo.DeleteExpiredSessions(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return removed, nil
}

// OAuthLogin signs in with an OAuth identity, linking it to an existing
// account with the same email or creating a new account
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}

		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			name = strings.TrimSpace(name)
			if validation.ValidateUsername(name) != nil {
				name = nickname.FromEmail(email)
			}
			user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			s.onboard(ctx, user)
		}
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}
