package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hackclub/hermes/internal/adapter/http/dto"
	"github.com/hackclub/hermes/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrDisbursementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateOrganization),
		errors.Is(err, domain.ErrDuplicateDisbursement),
		errors.Is(err, domain.ErrRunInProgress),
		errors.Is(err, domain.ErrMissingAccountSlug),
		errors.Is(err, domain.ErrDisbursementTerminal):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOrganizationName),
		errors.Is(err, domain.ErrInvalidSlug),
		errors.Is(err, domain.ErrInvalidIDFormat),
		errors.Is(err, domain.ErrNegativeCost),
		errors.Is(err, domain.ErrCostTooLarge),
		errors.Is(err, domain.ErrEmptyDisbursement),
		errors.Is(err, domain.ErrMissingIdempotencyKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
