package crafting

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// MockRepository implements repository.Crafting for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.CraftingTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.CraftingTx), args.Error(1)
}

// MockAccount implements AccountReader for testing
type MockAccount struct {
	mock.Mock
}

func (m *MockAccount) GetPlayer(ctx context.Context, userID string) (*domain.Player, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Player), args.Error(1)
}

// MockTx implements repository.CraftingTx for testing
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
