package handler

import (
	"net/http"
	"strconv"

	"cardledger/internal/domain"
	"cardledger/internal/ledger"
)

// HandleGetBox handles the box inspection view: a user's owned cards joined
// with catalog display data, narrowed by optional query filters.
func HandleGetBox(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		filter := domain.BoxFilter{
			NameContains: GetOptionalQueryParam(r, "name", ""),
			Package:      domain.Package(GetOptionalQueryParam(r, "package", "")),
		}
		if raw := GetOptionalQueryParam(r, "rarity", ""); raw != "" {
			rarity, err := strconv.Atoi(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
				return
			}
			filter.Rarity = rarity
		}

		owned, err := svc.GetBox(r.Context(), userID, filter)
		if err != nil {
			respondServiceError(w, r, "Get box", err)
			return
		}

		respondJSON(w, http.StatusOK, owned)
	}
}

// HandleGetStack handles reading one card's owned count
func HandleGetStack(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}
		rawCardID, ok := GetQueryParam(r, w, "card_id")
		if !ok {
			return
		}
		cardID, err := strconv.ParseInt(rawCardID, 10, 64)
		if err != nil || cardID < 1 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}

		count, err := svc.GetStack(r.Context(), userID, cardID)
		if err != nil {
			respondServiceError(w, r, "Get stack", err)
			return
		}

		respondJSON(w, http.StatusOK, domain.CardStack{CardID: cardID, Count: count})
	}
}
