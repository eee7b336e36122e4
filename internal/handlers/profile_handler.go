package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/service"
)

// ProfileHandler serves the profile, dashboard and achievement views
type ProfileHandler struct {
	profiles     *service.ProfileService
	wishes       *service.WishService
	achievements *service.AchievementService
	dashboard    *service.DashboardService
	logger       *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *service.ProfileService, wishes *service.WishService, achievements *service.AchievementService, dashboard *service.DashboardService, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		profiles:     profiles,
		wishes:       wishes,
		achievements: achievements,
		dashboard:    dashboard,
		logger:       logger,
	}
}

// GetProfile returns the caller's profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(GetUserFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile applies a partial profile update
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondWithError(w, nil, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	profile, err := h.profiles.UpdateProfile(GetUserFromContext(r.Context()), update)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Dashboard returns the full dashboard view
func (h *ProfileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseWishFilter(r)
	if err != nil {
		respondWithServiceError(w, h.logger, "", err)
		return
	}

	dashboard, err := h.dashboard.GetDashboard(r.Context(), GetUserFromContext(r.Context()), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Achievements returns unlocked and locked achievements with progress
func (h *ProfileHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	wishes, err := h.wishes.ListWishes(user.ID, models.WishFilter{})
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to list wishes", err)
		return
	}
	profile, err := h.profiles.GetProfile(user)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to load profile", err)
		return
	}

	writeJSON(w, http.StatusOK, h.achievements.Overview(user.ID, wishes, profile))
}
