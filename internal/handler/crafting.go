package handler

import (
	"net/http"

	"cardledger/internal/crafting"
	"cardledger/internal/logger"
)

// ComposeRequest is the body of a compose request
type ComposeRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid4"`
	CardID     int64  `json:"card_id" validate:"required,gt=0"`
	Multiplier int64  `json:"multiplier" validate:"min=1"`
}

// DecomposeRequest is the body of a decompose request
type DecomposeRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	CardID int64  `json:"card_id" validate:"required,gt=0"`
	Count  int64  `json:"count" validate:"min=1"`
}

// HandleCompose handles creating a card from its recipe materials
func HandleCompose(svc crafting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ComposeRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Compose"); err != nil {
			return
		}

		result, err := svc.Compose(r.Context(), req.UserID, req.CardID, req.Multiplier)
		if err != nil {
			respondServiceError(w, r, "Compose", err)
			return
		}

		log.Info("Compose handled", "userID", req.UserID, "cardID", req.CardID, "created", result.Created)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDecompose handles breaking cards down into materials
func HandleDecompose(svc crafting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req DecomposeRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Decompose"); err != nil {
			return
		}

		result, err := svc.Decompose(r.Context(), req.UserID, req.CardID, req.Count)
		if err != nil {
			respondServiceError(w, r, "Decompose", err)
			return
		}

		log.Info("Decompose handled", "userID", req.UserID, "cardID", req.CardID, "destroyed", result.Destroyed)
		respondJSON(w, http.StatusOK, result)
	}
}
