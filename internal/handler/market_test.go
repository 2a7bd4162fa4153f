package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cardledger/internal/domain"
	"cardledger/internal/market"
)

func TestHandleList_Success(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("List", mock.Anything, testSellerID, int64(1), int64(4), int64(7), domain.VisibilityPublic).
		Return(nil)

	body, _ := json.Marshal(ListRequest{UserID: testSellerID, CardID: 1, Count: 4, UnitPrice: 7, Visibility: "public"})
	req := httptest.NewRequest(http.MethodPost, "/market/list", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleList(mockSvc)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockSvc.AssertExpectations(t)
}

func TestHandleList_InvalidVisibility(t *testing.T) {
	mockSvc := new(MockMarketService)

	body, _ := json.Marshal(ListRequest{UserID: testSellerID, CardID: 1, Count: 4, UnitPrice: 7, Visibility: "everyone"})
	req := httptest.NewRequest(http.MethodPost, "/market/list", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleList(mockSvc)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleBuy_Success(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("Buy", mock.Anything, testBuyerID, market.BuyTarget{ListingID: 5, CardID: 1, Slippage: 5}, int64(2), int64(10)).
		Return(&market.BuyResult{ListingID: 5, CardID: 1, SellerID: testSellerID, Count: 2, UnitPrice: 7, TotalCost: 14}, nil)

	body, _ := json.Marshal(BuyRequest{BuyerID: testBuyerID, ListingID: 5, CardID: 1, Slippage: 5, Count: 2, MaxUnitPrice: 10})
	req := httptest.NewRequest(http.MethodPost, "/market/buy", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleBuy(mockSvc)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp market.BuyResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(14), resp.TotalCost)
}

func TestHandleBuy_RateLimited(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("Buy", mock.Anything, testBuyerID, mock.Anything, int64(2), int64(10)).
		Return(nil, &domain.RateLimitError{Limit: 20})

	body, _ := json.Marshal(BuyRequest{BuyerID: testBuyerID, ListingID: 5, Count: 2, MaxUnitPrice: 10})
	req := httptest.NewRequest(http.MethodPost, "/market/buy", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleBuy(mockSvc)(rr, req)

	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var resp ServiceErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 20, resp.Limit)
}

func TestHandleBuy_SelfTrade(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("Buy", mock.Anything, testBuyerID, mock.Anything, int64(2), int64(10)).
		Return(nil, domain.ErrSelfTrade)

	body, _ := json.Marshal(BuyRequest{BuyerID: testBuyerID, ListingID: 5, Count: 2, MaxUnitPrice: 10})
	req := httptest.NewRequest(http.MethodPost, "/market/buy", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleBuy(mockSvc)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleBuy_MalformedBuyerID(t *testing.T) {
	mockSvc := new(MockMarketService)

	// Ids the player table cannot hold are rejected before the service runs.
	body, _ := json.Marshal(BuyRequest{BuyerID: "buyer", ListingID: 5, Count: 2, MaxUnitPrice: 10})
	req := httptest.NewRequest(http.MethodPost, "/market/buy", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleBuy(mockSvc)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Must be a valid UUID")
	mockSvc.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTradeHistory_MalformedUserID(t *testing.T) {
	mockSvc := new(MockMarketService)

	req := httptest.NewRequest(http.MethodGet, "/market/trades?user_id=buyer", nil)
	rr := httptest.NewRecorder()

	HandleTradeHistory(mockSvc)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), ErrMsgInvalidUserID)
	mockSvc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDelist_ReportsShortfall(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("Delist", mock.Anything, testSellerID, int64(1), int64(10)).
		Return(&market.DelistResult{Returned: 6, Shortfall: 4}, nil)

	body, _ := json.Marshal(DelistRequest{UserID: testSellerID, CardID: 1, Count: 10})
	req := httptest.NewRequest(http.MethodPost, "/market/delist", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	HandleDelist(mockSvc)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp market.DelistResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(6), resp.Returned)
	assert.Equal(t, int64(4), resp.Shortfall)
}

func TestHandleBrowseListings_Filters(t *testing.T) {
	mockSvc := new(MockMarketService)
	mockSvc.On("Browse", mock.Anything, domain.ListingFilter{CardID: 1, PriceMax: 20}).
		Return([]domain.Listing{{ID: 5, CardID: 1, OwnerID: testSellerID, Count: 3, UnitPrice: 7, Visibility: domain.VisibilityPublic}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/market/listings?card_id=1&price_max=20", nil)
	rr := httptest.NewRecorder()

	HandleBrowseListings(mockSvc)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []domain.Listing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(5), resp[0].ID)
}

func TestHandleTradeHistory_InvalidLimit(t *testing.T) {
	mockSvc := new(MockMarketService)

	req := httptest.NewRequest(http.MethodGet, "/market/trades?user_id="+testBuyerID+"&limit=-1", nil)
	rr := httptest.NewRecorder()

	HandleTradeHistory(mockSvc)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockSvc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
}
