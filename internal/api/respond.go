package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/example/otaku-market/internal/auth"
	"github.com/example/otaku-market/internal/order"
	"github.com/example/otaku-market/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// writeError maps domain errors onto HTTP statuses. Anything unmapped is a
// 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var stockErr *order.InsufficientStockError
	var transitionErr *order.InvalidTransitionError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"remaining":  stockErr.Remaining,
		})
	case errors.As(err, &transitionErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error": err.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &validationErrs):
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, store.ErrNotFound):
		respondError(w, "not found", http.StatusNotFound)
	case errors.Is(err, order.ErrAlreadyCancelled):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrDuplicate):
		respondError(w, "already exists", http.StatusConflict)
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, auth.ErrPasswordTooShort):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrUnauthorized):
		respondError(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, "request timed out, please retry", http.StatusServiceUnavailable)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}
