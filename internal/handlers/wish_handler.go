package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"santaswishlist/internal/models"
	"santaswishlist/internal/service"
	"santaswishlist/internal/validation"
)

// WishHandler handles wish requests
type WishHandler struct {
	wishService *service.WishService
	logger      *zap.Logger
}

// NewWishHandler creates a new wish handler
func NewWishHandler(wishService *service.WishService, logger *zap.Logger) *WishHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishHandler{wishService: wishService, logger: logger}
}

type createWishRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    models.WishCategory `json:"category"`
}

// parseWishFilter reads the category and status query parameters. "all" and
// empty values do not filter.
func parseWishFilter(r *http.Request) (models.WishFilter, error) {
	var filter models.WishFilter
	query := r.URL.Query()

	if c := query.Get("category"); c != "" && c != "all" {
		filter.Category = models.WishCategory(c)
		if err := validation.ValidateCategory(filter.Category); err != nil {
			return filter, err
		}
	}
	if s := query.Get("status"); s != "" && s != "all" {
		filter.Status = models.WishStatus(s)
		if err := validation.ValidateStatus(filter.Status); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

// ListWishes returns the caller's wishes, newest first
func (h *WishHandler) ListWishes(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	filter, err := parseWishFilter(r)
	if err != nil {
		respondWithServiceError(w, h.logger, "", err)
		return
	}

	wishes, err := h.wishService.ListWishes(user.ID, filter)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to list wishes", err)
		return
	}
	writeJSON(w, http.StatusOK, wishes)
}

// CreateWish adds a wish
func (h *WishHandler) CreateWish(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req createWishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, nil, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	wish, err := h.wishService.CreateWish(r.Context(), user, req.Title, req.Description, req.Category)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to create wish", err)
		return
	}
	writeJSON(w, http.StatusCreated, wish)
}

// UpdateWish applies a partial update to a wish
func (h *WishHandler) UpdateWish(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var update models.WishUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondWithError(w, nil, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	wish, err := h.wishService.UpdateWish(r.Context(), user, mux.Vars(r)["id"], update)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to update wish", err)
		return
	}
	writeJSON(w, http.StatusOK, wish)
}

// DeleteWish removes a wish
func (h *WishHandler) DeleteWish(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.wishService.DeleteWish(r.Context(), user, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, h.logger, "failed to delete wish", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
