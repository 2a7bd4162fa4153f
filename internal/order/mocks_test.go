package order

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// MockRepository implements repository.Order for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.OrderTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.OrderTx), args.Error(1)
}

// MockTx implements repository.OrderTx for testing
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

func (m *MockTx) LockOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockTx) LockWaitingOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockTx) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}
