package handlers

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/security"
	"santaswishlist/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const authContextKey ContextKey = "auth"

// authInfo is what RequireAuth learned about the caller
type authInfo struct {
	user      *models.User
	sessionID string
	viaCookie bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
	logger      *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
		logger:      logger,
	}
}

// authenticate resolves the caller from a bearer token, falling back to the
// session cookie
func (m *Middleware) authenticate(r *http.Request) (*authInfo, error) {
	if r.Header.Get("Authorization") != "" {
		token, ok := bearerToken(r)
		if !ok {
			return nil, service.ErrSessionNotFound
		}
		user, sessionID, err := m.authService.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &authInfo{user: user, sessionID: sessionID}, nil
	}

	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, service.ErrSessionNotFound
	}
	user, err := m.authService.ValidateSession(cookie.Value)
	if err != nil {
		return nil, err
	}
	return &authInfo{user: user, sessionID: cookie.Value, viaCookie: true}, nil
}

// RequireAuth is middleware that requires a valid session or bearer token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := m.authenticate(r)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				if _, cookieErr := r.Cookie(security.SessionCookieName); cookieErr == nil {
					http.SetCookie(w, security.CreateDeleteCookie(r))
				}
				respondWithError(w, nil, http.StatusUnauthorized, "Authentication required", "", nil)
				return
			}
			respondWithError(w, m.logger, http.StatusInternalServerError, "Internal server error", "failed to authenticate request", err)
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCSRF rejects cookie-authenticated state-changing requests that lack a
// valid CSRF token. Bearer-token requests are exempt.
func (m *Middleware) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		info := authFromContext(r.Context())
		if info == nil || !info.viaCookie {
			next.ServeHTTP(w, r)
			return
		}

		if !m.csrf.ValidateToken(info.sessionID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, nil, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit is middleware that limits requests per client IP
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			respondWithError(w, nil, http.StatusTooManyRequests, "Too many requests. Please try again later.", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging. It passes
// Hijack through so websocket upgrades keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Logging returns middleware that logs every HTTP request
func Logging(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", security.GetClientIP(r)))
		})
	}
}

func authFromContext(ctx context.Context) *authInfo {
	info, ok := ctx.Value(authContextKey).(*authInfo)
	if !ok {
		return nil
	}
	return info
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	if info := authFromContext(ctx); info != nil {
		return info.user
	}
	return nil
}
