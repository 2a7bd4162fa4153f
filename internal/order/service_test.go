package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cardledger/internal/domain"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func waitingOrder(id int64, userID string, required map[int64]int64) *domain.Order {
	return &domain.Order{
		ID:             id,
		UserID:         userID,
		Required:       required,
		RewardCurrency: 120,
		RewardExp:      35,
		Status:         domain.OrderWaiting,
		CreatedAt:      testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	}
}

func newTestService(repo *MockRepository) *service {
	return &service{repo: repo, now: func() time.Time { return testNow }}
}

func TestComplete_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).
		Return(waitingOrder(7, "user-1", map[int64]int64{1: 2, 3: 1}), nil)
	mockTx.On("LockStacks", mock.Anything, "user-1", []int64{1, 3}).
		Return(map[int64]int64{1: 5, 3: 1}, nil)
	mockTx.On("TakeFromStack", mock.Anything, "user-1", int64(1), int64(2)).Return(nil)
	mockTx.On("TakeFromStack", mock.Anything, "user-1", int64(3), int64(1)).Return(nil)
	mockTx.On("SetOrderStatus", mock.Anything, int64(7), domain.OrderFulfilled).Return(nil)
	mockTx.On("LockPlayer", mock.Anything, "user-1").
		Return(&domain.Player{ID: "user-1", Level: 3, Balance: 10}, nil)
	mockTx.On("Credit", mock.Anything, "user-1", int64(120)).Return(nil)
	mockTx.On("GrantExp", mock.Anything, "user-1", int64(35)).Return(nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

	svc := newTestService(mockRepo)

	reward, err := svc.Complete(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.Equal(t, int64(120), reward.Currency)
	assert.Equal(t, int64(35), reward.Exp)
	// Player row before ledger rows, matching every other engine.
	assert.Less(t, callIndex(mockTx, "LockPlayer"), callIndex(mockTx, "LockStacks"))
	mockTx.AssertExpectations(t)
}

// callIndex returns the position of the first recorded call to method, or -1.
func callIndex(m *MockTx, method string) int {
	for i, call := range m.Calls {
		if call.Method == method {
			return i
		}
	}
	return -1
}

func TestComplete_FullShortfall(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).
		Return(waitingOrder(7, "user-1", map[int64]int64{1: 2, 3: 1}), nil)
	mockTx.On("LockPlayer", mock.Anything, "user-1").
		Return(&domain.Player{ID: "user-1", Level: 3, Balance: 10}, nil)
	mockTx.On("LockStacks", mock.Anything, "user-1", []int64{1, 3}).
		Return(map[int64]int64{1: 2, 3: 0}, nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := newTestService(mockRepo)

	_, err := svc.Complete(context.Background(), "user-1", 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLackOfCards)

	var shortErr *domain.ShortfallError
	require.ErrorAs(t, err, &shortErr)
	assert.Equal(t, []domain.Shortfall{{CardID: 3, Missing: 1}}, shortErr.Items)

	// The order stays waiting and the ledger is untouched.
	mockTx.AssertNotCalled(t, "TakeFromStack", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertNotCalled(t, "SetOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestComplete_NotOwned(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).
		Return(waitingOrder(7, "someone-else", map[int64]int64{1: 1}), nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := newTestService(mockRepo)

	_, err := svc.Complete(context.Background(), "user-1", 7)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComplete_Missing(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).Return(nil, nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := newTestService(mockRepo)

	_, err := svc.Complete(context.Background(), "user-1", 7)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComplete_ExpiredLazily(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	expired := waitingOrder(7, "user-1", map[int64]int64{1: 1})
	expired.ExpiresAt = testNow.Add(-time.Minute)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).Return(expired, nil)
	mockTx.On("SetOrderStatus", mock.Anything, int64(7), domain.OrderExpired).Return(nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

	svc := newTestService(mockRepo)

	_, err := svc.Complete(context.Background(), "user-1", 7)

	// The expiry is persisted even though the completion fails.
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockTx.AssertCalled(t, "SetOrderStatus", mock.Anything, int64(7), domain.OrderExpired)
	mockTx.AssertCalled(t, "Commit", mock.Anything)
	mockTx.AssertNotCalled(t, "LockStacks", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).
		Return(waitingOrder(7, "user-1", map[int64]int64{1: 1}), nil)
	mockTx.On("SetOrderStatus", mock.Anything, int64(7), domain.OrderCancelled).Return(nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

	svc := newTestService(mockRepo)

	err := svc.Cancel(context.Background(), "user-1", 7)

	require.NoError(t, err)
	// Cancellation never touches the ledger.
	mockTx.AssertNotCalled(t, "TakeFromStack", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertExpectations(t)
}

func TestCancel_AlreadyFulfilled(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	done := waitingOrder(7, "user-1", map[int64]int64{1: 1})
	done.Status = domain.OrderFulfilled

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockOrder", mock.Anything, int64(7)).Return(done, nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := newTestService(mockRepo)

	err := svc.Cancel(context.Background(), "user-1", 7)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingOrders_SweepsExpired(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	fresh := *waitingOrder(1, "user-1", map[int64]int64{1: 1})
	stale := *waitingOrder(2, "user-1", map[int64]int64{1: 1})
	stale.ExpiresAt = testNow.Add(-time.Minute)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockWaitingOrders", mock.Anything, "user-1").
		Return([]domain.Order{fresh, stale}, nil)
	mockTx.On("SetOrderStatus", mock.Anything, int64(2), domain.OrderExpired).Return(nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

	svc := newTestService(mockRepo)

	pending, err := svc.PendingOrders(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
	mockTx.AssertExpectations(t)
}
