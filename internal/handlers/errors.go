package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"santaswishlist/internal/service"
	"santaswishlist/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil && logger != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps service and validation errors to a status.
// Anything unrecognised is logged and reported as a 500 with logMsg.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, logMsg string, err error) {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, nil, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, nil, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired):
		respondWithError(w, nil, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, nil, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, service.ErrWishNotFound):
		respondWithError(w, nil, http.StatusNotFound, err.Error(), "", nil)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, "Internal server error", logMsg, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
