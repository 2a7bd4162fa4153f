package handler

import (
	"errors"
	"net/http"

	"cardledger/internal/domain"
	"cardledger/internal/logger"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidLimit          = "Invalid limit parameter"
	ErrMsgInvalidUserID         = "Invalid user_id parameter"
)

// User-facing error messages derived from engine errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgNotEnoughCards      = "Not enough cards"
	ErrMsgNotEnoughCurrency   = "Not enough currency"
	ErrMsgLevelTooLow         = "Your level is too low for that card"
	ErrMsgSelfTrade           = "You cannot buy your own listing"
	ErrMsgTradeLimitReached   = "Daily trade limit reached. Try again later"
	ErrMsgMissingMaterials    = "Missing compose materials"
	ErrMsgMissingOrderCards   = "Missing cards required by the order"
	ErrMsgCannotCompose       = "That card cannot be composed"
	ErrMsgCannotDecompose     = "That card cannot be decomposed"
	ErrMsgNoDrawableCards     = "No drawable cards in that package at your level"
)

// ServiceErrorResponse is the error payload for engine failures. The typed
// fields carry the structured detail of the matching engine error; only the
// relevant ones are set.
type ServiceErrorResponse struct {
	Error       string             `json:"error"`
	Needed      int64              `json:"needed,omitempty"`
	UnlockLevel int                `json:"unlock_level,omitempty"`
	Limit       int                `json:"limit,omitempty"`
	Shortfall   []domain.Shortfall `json:"shortfall,omitempty"`
}

// respondServiceError classifies an engine error and writes the matching
// HTTP response. Expected business outcomes map to client statuses with
// typed payloads; anything unclassified is a 500 with no internal detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	log := logger.FromContext(r.Context())

	var (
		fundsErr *domain.InsufficientFundsError
		lockErr  *domain.LevelLockedError
		limitErr *domain.RateLimitError
		shortErr *domain.ShortfallError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, ServiceErrorResponse{Error: ErrMsgInvalidRequestSummary})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, ServiceErrorResponse{Error: ErrMsgResourceNotFound})
	case errors.As(err, &fundsErr):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgNotEnoughCurrency, Needed: fundsErr.Needed})
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgNotEnoughCurrency})
	case errors.Is(err, domain.ErrInsufficientStock):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgNotEnoughCards})
	case errors.As(err, &lockErr):
		respondJSON(w, http.StatusForbidden, ServiceErrorResponse{Error: ErrMsgLevelTooLow, UnlockLevel: lockErr.UnlockLevel})
	case errors.Is(err, domain.ErrLevelLocked):
		respondJSON(w, http.StatusForbidden, ServiceErrorResponse{Error: ErrMsgLevelTooLow})
	case errors.Is(err, domain.ErrSelfTrade):
		respondJSON(w, http.StatusBadRequest, ServiceErrorResponse{Error: ErrMsgSelfTrade})
	case errors.As(err, &limitErr):
		respondJSON(w, http.StatusTooManyRequests, ServiceErrorResponse{Error: ErrMsgTradeLimitReached, Limit: limitErr.Limit})
	case errors.Is(err, domain.ErrRateLimited):
		respondJSON(w, http.StatusTooManyRequests, ServiceErrorResponse{Error: ErrMsgTradeLimitReached})
	case errors.As(err, &shortErr) && errors.Is(err, domain.ErrLackOfMaterials):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgMissingMaterials, Shortfall: shortErr.Items})
	case errors.As(err, &shortErr) && errors.Is(err, domain.ErrLackOfCards):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgMissingOrderCards, Shortfall: shortErr.Items})
	case errors.Is(err, domain.ErrNotComposable):
		respondJSON(w, http.StatusBadRequest, ServiceErrorResponse{Error: ErrMsgCannotCompose})
	case errors.Is(err, domain.ErrNotDecomposable):
		respondJSON(w, http.StatusBadRequest, ServiceErrorResponse{Error: ErrMsgCannotDecompose})
	case errors.Is(err, domain.ErrNoEligibleCards):
		respondJSON(w, http.StatusConflict, ServiceErrorResponse{Error: ErrMsgNoDrawableCards})
	default:
		// Operational fault: the only category logged as an error.
		log.Error("Unhandled service error", "action", action, "error", err)
		respondJSON(w, http.StatusInternalServerError, ServiceErrorResponse{Error: ErrMsgGenericServerError})
	}
}
