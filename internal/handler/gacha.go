package handler

import (
	"net/http"

	"cardledger/internal/domain"
	"cardledger/internal/gacha"
	"cardledger/internal/logger"
)

// PullRequest is the body of a draw request
type PullRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	Package string `json:"package" validate:"required,package"`
	Times   int    `json:"times" validate:"min=1,max=100"`
}

// PullResponse is the payload of a successful draw
type PullResponse struct {
	Cards []domain.OwnedCard `json:"cards"`
	Cost  int64              `json:"cost"`
}

// HandlePull handles drawing cards from a package
func HandlePull(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PullRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Pull"); err != nil {
			return
		}

		result, err := svc.Pull(r.Context(), req.UserID, domain.Package(req.Package), req.Times)
		if err != nil {
			respondServiceError(w, r, "Pull", err)
			return
		}

		log.Info("Pull handled", "userID", req.UserID, "package", req.Package, "times", req.Times)
		respondJSON(w, http.StatusOK, PullResponse{Cards: result.Cards, Cost: result.Cost})
	}
}
