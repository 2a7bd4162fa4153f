package handler

import (
	"net/http"
	"strconv"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
)

// HandleSearchCatalog handles browsing the card reference data
func HandleSearchCatalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := domain.BoxFilter{
			NameContains: GetOptionalQueryParam(r, "name", ""),
			Package:      domain.Package(GetOptionalQueryParam(r, "package", "")),
		}
		if filter.Package != "" && !filter.Package.Valid() {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}
		if raw := GetOptionalQueryParam(r, "rarity", ""); raw != "" {
			rarity, err := strconv.Atoi(raw)
			if err != nil || rarity < domain.MinRarity || rarity > domain.MaxRarity {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
				return
			}
			filter.Rarity = rarity
		}

		respondJSON(w, http.StatusOK, cat.Find(filter))
	}
}

// HandleGetCard handles reading one card definition
func HandleGetCard(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawCardID, ok := GetQueryParam(r, w, "card_id")
		if !ok {
			return
		}
		cardID, err := strconv.ParseInt(rawCardID, 10, 64)
		if err != nil || cardID < 1 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}

		card := cat.Card(cardID)
		if card == nil {
			respondError(w, http.StatusNotFound, ErrMsgResourceNotFound)
			return
		}
		respondJSON(w, http.StatusOK, card)
	}
}
