package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/security"
	"santaswishlist/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthStore           sessions.Store
	oauthRedirectBaseURL string
	appBaseURL           string
	logger               *zap.Logger
}

// AuthHandlerConfig carries the OAuth settings of an AuthHandler
type AuthHandlerConfig struct {
	OAuthProviders       map[string]OAuthProvider
	CookieSecret         string
	OAuthRedirectBaseURL string
	AppBaseURL           string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, cfg AuthHandlerConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := sessions.NewCookieStore([]byte(cfg.CookieSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       cfg.OAuthProviders,
		oauthStore:           store,
		oauthRedirectBaseURL: cfg.OAuthRedirectBaseURL,
		appBaseURL:           cfg.AppBaseURL,
		logger:               logger,
	}
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CSRFToken string       `json:"csrfToken"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, nil, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to register user", err)
		return
	}

	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to sign in new user", err)
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID))
	h.startSession(w, r, http.StatusCreated, session, user)
}

// Login signs a user in with email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, nil, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to login", err)
		return
	}

	h.startSession(w, r, http.StatusOK, session, user)
}

// startSession sets the session cookie and returns the bearer token
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session, user *models.User) {
	token, err := h.authService.IssueToken(session)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Internal server error", "failed to issue token", err)
		return
	}
	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Internal server error", "failed to generate csrf token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))
	writeJSON(w, status, authResponse{
		User:      userResponse{ID: user.ID, Email: user.Email, Username: user.Username},
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		CSRFToken: csrfToken,
	})
}

// Logout ends the caller's session. It succeeds even without one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		sessionID = cookie.Value
	}
	if token, ok := bearerToken(r); ok {
		if _, sid, err := h.authService.ValidateToken(token); err == nil {
			sessionID = sid
		}
	}

	if sessionID != "" {
		if err := h.authService.Logout(sessionID); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

// CSRFToken returns the CSRF token bound to the caller's session
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	info := authFromContext(r.Context())
	token, err := h.csrf.GenerateToken(info.sessionID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Internal server error", "failed to generate csrf token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Username: user.Username})
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, ok && token != ""
}
