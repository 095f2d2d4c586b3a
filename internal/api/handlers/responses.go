package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// Helper functions shared by all handlers
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the application error taxonomy onto HTTP status
// codes. Unknown kinds share 404 with plain not-found but keep their own
// message, and both conflicts and rejected assets are semantic errors, 422.
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeUnknownKind:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
	case apperrors.ErrorTypeAssetRejected:
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  appErr.Message,
			"reason": appErr.Reason,
		})
	case apperrors.ErrorTypeUnauthorized:
		respondWithError(w, http.StatusUnauthorized, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
