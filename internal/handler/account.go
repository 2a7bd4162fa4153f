package handler

import (
	"net/http"

	"cardledger/internal/account"
)

// HandleGetProfile handles reading a player's profile
func HandleGetProfile(svc account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		player, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get profile", err)
			return
		}

		respondJSON(w, http.StatusOK, player)
	}
}
