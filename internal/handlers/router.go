package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handlers groups everything NewRouter mounts
type Handlers struct {
	Auth       *AuthHandler
	Wishes     *WishHandler
	Profiles   *ProfileHandler
	Public     *PublicHandler
	Middleware *Middleware
}

// NewRouter builds the HTTP API
func NewRouter(h Handlers, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(Logging(logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, nil, http.StatusNotFound, "Not found", "", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, nil, http.StatusMethodNotAllowed, "Method not allowed", "", nil)
	})

	r.HandleFunc("/healthz", h.Public.Healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/countdown", h.Public.Countdown).Methods(http.MethodGet)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/register", h.Middleware.RateLimit(http.HandlerFunc(h.Auth.Register))).Methods(http.MethodPost)
	auth.Handle("/login", h.Middleware.RateLimit(http.HandlerFunc(h.Auth.Login))).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/providers", h.Auth.ListOAuthProviders).Methods(http.MethodGet)
	auth.HandleFunc("/{provider}/start", h.Auth.StartOAuth).Methods(http.MethodGet)
	auth.HandleFunc("/{provider}/callback", h.Auth.OAuthCallback).Methods(http.MethodGet)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(h.Middleware.RequireAuth, h.Middleware.RequireCSRF)

	protected.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	protected.HandleFunc("/csrf", h.Auth.CSRFToken).Methods(http.MethodGet)

	protected.HandleFunc("/wishes", h.Wishes.ListWishes).Methods(http.MethodGet)
	protected.HandleFunc("/wishes", h.Wishes.CreateWish).Methods(http.MethodPost)
	protected.HandleFunc("/wishes/{id}", h.Wishes.UpdateWish).Methods(http.MethodPut)
	protected.HandleFunc("/wishes/{id}", h.Wishes.DeleteWish).Methods(http.MethodDelete)

	protected.HandleFunc("/profile", h.Profiles.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.Profiles.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/dashboard", h.Profiles.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/achievements", h.Profiles.Achievements).Methods(http.MethodGet)

	protected.HandleFunc("/ws", h.Public.Stream).Methods(http.MethodGet)

	return r
}
