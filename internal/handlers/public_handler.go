package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/holiday"
	"santaswishlist/internal/realtime"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PublicHandler serves unauthenticated utility endpoints and the realtime stream
type PublicHandler struct {
	db     Pinger
	hub    *realtime.Hub
	now    func() time.Time
	logger *zap.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(db Pinger, hub *realtime.Hub, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{db: db, hub: hub, now: time.Now, logger: logger}
}

// Countdown returns the time left until Christmas
func (h *PublicHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"christmas": holiday.NextChristmas(now),
		"timeLeft":  holiday.Countdown(now),
	})
}

// Healthz reports whether the database answers
func (h *PublicHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondWithError(w, h.logger, http.StatusServiceUnavailable, "database unavailable", "health check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stream upgrades to a websocket carrying the caller's realtime events
func (h *PublicHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.hub.Serve(w, r, user.ID); err != nil {
		h.logger.Debug("websocket closed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}
