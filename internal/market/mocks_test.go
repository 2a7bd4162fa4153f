package market

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// MockRepository implements repository.Market for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BrowseListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockRepository) SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error) {
	args := m.Called(ctx, ownerID, includeFriendsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockRepository) TradeHistory(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TradeRecord), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.MarketTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.MarketTx), args.Error(1)
}

// MockTx implements repository.MarketTx for testing
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) LockStacks(ctx context.Context, userID string, cardIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, userID, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockTx) AddToStack(ctx context.Context, userID string, cardID, count int64) error {
	args := m.Called(ctx, userID, cardID, count)
	return args.Error(0)
}

func (m *MockTx) TakeFromStack(ctx context.Context, userID string, cardID, count int64) error {
	args := m.Called(ctx, userID, cardID, count)
	return args.Error(0)
}

func (m *MockTx) LockPlayer(ctx context.Context, userID string) (*domain.Player, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Player), args.Error(1)
}

func (m *MockTx) Debit(ctx context.Context, userID string, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockTx) Credit(ctx context.Context, userID string, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockTx) GrantExp(ctx context.Context, userID string, exp int64) error {
	args := m.Called(ctx, userID, exp)
	return args.Error(0)
}

func (m *MockTx) LockListing(ctx context.Context, listingID int64) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockTx) LockOwnListing(ctx context.Context, cardID int64, ownerID string) (*domain.Listing, error) {
	args := m.Called(ctx, cardID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockTx) LockCheapestPublicListing(ctx context.Context, cardID, minCount, maxUnitPrice int64) (*domain.Listing, error) {
	args := m.Called(ctx, cardID, minCount, maxUnitPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockTx) UpsertListing(ctx context.Context, cardID int64, ownerID string, count, unitPrice int64, visibility domain.Visibility) error {
	args := m.Called(ctx, cardID, ownerID, count, unitPrice, visibility)
	return args.Error(0)
}

func (m *MockTx) ReduceListing(ctx context.Context, listingID, count int64) error {
	args := m.Called(ctx, listingID, count)
	return args.Error(0)
}

func (m *MockTx) CountBuyerTrades(ctx context.Context, buyerID string, since time.Time) (int, error) {
	args := m.Called(ctx, buyerID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockTx) AppendTradeRecord(ctx context.Context, record *domain.TradeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
