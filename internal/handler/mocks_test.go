package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cardledger/internal/crafting"
	"cardledger/internal/domain"
	"cardledger/internal/gacha"
	"cardledger/internal/market"
)

// Well-formed player ids for request fixtures; the DTOs require UUIDs.
const (
	testUserID   = "5e8c9d0f-1a2b-4c3d-8e4f-6a7b8c9d0e1f"
	testSellerID = "1d2f7f3a-55b4-4e0d-8a1c-9b6f2e4c8d10"
	testBuyerID  = "0a1b2c3d-4e5f-4a6b-9c8d-0e1f2a3b4c5d"
)

// MockGachaService implements gacha.Service for testing
type MockGachaService struct {
	mock.Mock
}

func (m *MockGachaService) Pull(ctx context.Context, userID string, pkg domain.Package, times int) (*gacha.PullResult, error) {
	args := m.Called(ctx, userID, pkg, times)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gacha.PullResult), args.Error(1)
}

// MockCraftingService implements crafting.Service for testing
type MockCraftingService struct {
	mock.Mock
}

func (m *MockCraftingService) Compose(ctx context.Context, userID string, targetCardID, multiplier int64) (*crafting.ComposeResult, error) {
	args := m.Called(ctx, userID, targetCardID, multiplier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crafting.ComposeResult), args.Error(1)
}

func (m *MockCraftingService) Decompose(ctx context.Context, userID string, sourceCardID, count int64) (*crafting.DecomposeResult, error) {
	args := m.Called(ctx, userID, sourceCardID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crafting.DecomposeResult), args.Error(1)
}

// MockMarketService implements market.Service for testing
type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) List(ctx context.Context, userID string, cardID, count, unitPrice int64, visibility domain.Visibility) error {
	args := m.Called(ctx, userID, cardID, count, unitPrice, visibility)
	return args.Error(0)
}

func (m *MockMarketService) Buy(ctx context.Context, buyerID string, target market.BuyTarget, count, maxUnitPrice int64) (*market.BuyResult, error) {
	args := m.Called(ctx, buyerID, target, count, maxUnitPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.BuyResult), args.Error(1)
}

func (m *MockMarketService) Delist(ctx context.Context, userID string, cardID, count int64) (*market.DelistResult, error) {
	args := m.Called(ctx, userID, cardID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.DelistResult), args.Error(1)
}

func (m *MockMarketService) Browse(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockMarketService) SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error) {
	args := m.Called(ctx, ownerID, includeFriendsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockMarketService) History(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TradeRecord), args.Error(1)
}
