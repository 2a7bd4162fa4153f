package handler

import (
	"net/http"
	"strconv"

	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/market"
)

// ListRequest is the body of a listing creation request
type ListRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid4"`
	CardID     int64  `json:"card_id" validate:"required,gt=0"`
	Count      int64  `json:"count" validate:"min=1"`
	UnitPrice  int64  `json:"unit_price" validate:"min=1"`
	Visibility string `json:"visibility" validate:"required,visibility"`
}

// BuyRequest is the body of a purchase request. Either listing_id or card_id
// must be set; slippage only applies to the card_id fallback.
type BuyRequest struct {
	BuyerID          string `json:"buyer_id" validate:"required,uuid4"`
	ListingID        int64  `json:"listing_id" validate:"min=0"`
	CardID           int64  `json:"card_id" validate:"min=0"`
	Slippage         int64  `json:"slippage" validate:"min=0"`
	Count            int64  `json:"count" validate:"min=1"`
	MaxUnitPrice     int64  `json:"max_unit_price" validate:"min=1"`
	AllowFriendsOnly bool   `json:"allow_friends_only"`
}

// DelistRequest is the body of a delist request
type DelistRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	CardID int64  `json:"card_id" validate:"required,gt=0"`
	Count  int64  `json:"count" validate:"min=1"`
}

// HandleList handles putting cards up for sale
func HandleList(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ListRequest
		if err := DecodeAndValidateRequest(r, w, &req, "List"); err != nil {
			return
		}

		if err := svc.List(r.Context(), req.UserID, req.CardID, req.Count, req.UnitPrice, domain.Visibility(req.Visibility)); err != nil {
			respondServiceError(w, r, "List", err)
			return
		}

		log.Info("List handled", "userID", req.UserID, "cardID", req.CardID, "count", req.Count)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Listing created"})
	}
}

// HandleBuy handles purchasing from a listing
func HandleBuy(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req BuyRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Buy"); err != nil {
			return
		}

		target := market.BuyTarget{
			ListingID:        req.ListingID,
			CardID:           req.CardID,
			Slippage:         req.Slippage,
			AllowFriendsOnly: req.AllowFriendsOnly,
		}
		result, err := svc.Buy(r.Context(), req.BuyerID, target, req.Count, req.MaxUnitPrice)
		if err != nil {
			respondServiceError(w, r, "Buy", err)
			return
		}

		log.Info("Buy handled", "buyerID", req.BuyerID, "listingID", result.ListingID, "totalCost", result.TotalCost)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDelist handles pulling cards back off the market
func HandleDelist(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req DelistRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Delist"); err != nil {
			return
		}

		result, err := svc.Delist(r.Context(), req.UserID, req.CardID, req.Count)
		if err != nil {
			respondServiceError(w, r, "Delist", err)
			return
		}

		log.Info("Delist handled", "userID", req.UserID, "cardID", req.CardID, "returned", result.Returned, "shortfall", result.Shortfall)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleBrowseListings handles the public market browse view
func HandleBrowseListings(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := domain.ListingFilter{
			Package:      domain.Package(GetOptionalQueryParam(r, "package", "")),
			NameContains: GetOptionalQueryParam(r, "name", ""),
		}

		var err error
		if filter.CardID, err = parseOptionalInt64(r, "card_id"); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}
		if filter.PriceMin, err = parseOptionalInt64(r, "price_min"); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}
		if filter.PriceMax, err = parseOptionalInt64(r, "price_max"); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}

		listings, err := svc.Browse(r.Context(), filter)
		if err != nil {
			respondServiceError(w, r, "Browse", err)
			return
		}

		respondJSON(w, http.StatusOK, listings)
	}
}

// HandleSellerListings handles one seller's listing view
func HandleSellerListings(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}
		includeFriends := GetOptionalQueryParam(r, "include_friends", "false") == "true"

		listings, err := svc.SellerListings(r.Context(), ownerID, includeFriends)
		if err != nil {
			respondServiceError(w, r, "SellerListings", err)
			return
		}

		respondJSON(w, http.StatusOK, listings)
	}
}

// HandleTradeHistory handles a user's trade history view
func HandleTradeHistory(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		limit, err := strconv.Atoi(GetOptionalQueryParam(r, "limit", "50"))
		if err != nil || limit < 1 || limit > 500 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}

		history, err := svc.History(r.Context(), userID, limit)
		if err != nil {
			respondServiceError(w, r, "TradeHistory", err)
			return
		}

		respondJSON(w, http.StatusOK, history)
	}
}

// parseOptionalInt64 reads an optional numeric query parameter, 0 when absent.
func parseOptionalInt64(r *http.Request, paramName string) (int64, error) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
