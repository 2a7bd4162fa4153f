package gacha

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
)

const testSeed = 42

func testCard(id int64, rarity int, unlockLevel int) domain.CardDefinition {
	return domain.CardDefinition{
		ID:          id,
		Name:        "Card " + string(rune('A'+id-1)),
		Rarity:      rarity,
		Package:     domain.PackageBase,
		UnlockLevel: unlockLevel,
	}
}

// fullCatalog has one card per drawable rarity, all unlocked at level 1.
func fullCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(&catalog.Config{
		Version: "test",
		Cards: []domain.CardDefinition{
			testCard(1, 1, 1),
			testCard(2, 2, 1),
			testCard(3, 3, 1),
			testCard(4, 4, 1),
		},
	})
	require.NoError(t, err)
	return cat
}

func testPlayer(balance int64) *domain.Player {
	return &domain.Player{ID: "user-1", Username: "tester", Level: 1, Balance: balance}
}

func TestPull_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockPlayer", mock.Anything, "user-1").Return(testPlayer(1000), nil)
	mockTx.On("Debit", mock.Anything, "user-1", int64(50)).Return(nil)
	mockTx.On("AddToStack", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

	svc := NewService(mockRepo, fullCatalog(t), testSeed)

	result, err := svc.Pull(context.Background(), "user-1", domain.PackageBase, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Cost)

	var total int64
	for _, card := range result.Cards {
		total += card.Count
		assert.NotEmpty(t, card.Name)
	}
	assert.Equal(t, int64(5), total)

	mockTx.AssertCalled(t, "Debit", mock.Anything, "user-1", int64(50))
	mockTx.AssertCalled(t, "Commit", mock.Anything)
}

func TestPull_DeterministicWithSeed(t *testing.T) {
	run := func() *PullResult {
		mockRepo := new(MockRepository)
		mockTx := new(MockTx)
		mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
		mockTx.On("LockPlayer", mock.Anything, "user-1").Return(testPlayer(1000), nil)
		mockTx.On("Debit", mock.Anything, "user-1", mock.Anything).Return(nil)
		mockTx.On("AddToStack", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil)
		mockTx.On("Commit", mock.Anything).Return(nil)
		mockTx.On("Rollback", mock.Anything).Return(assert.AnError)

		svc := NewService(mockRepo, fullCatalog(t), testSeed)
		result, err := svc.Pull(context.Background(), "user-1", domain.PackageBase, 20)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first.Cards, second.Cards)
}

func TestPull_InsufficientFunds(t *testing.T) {
	mockRepo := new(MockRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockPlayer", mock.Anything, "user-1").Return(testPlayer(40), nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := NewService(mockRepo, fullCatalog(t), testSeed)

	_, err := svc.Pull(context.Background(), "user-1", domain.PackageBase, 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var fundsErr *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, int64(50), fundsErr.Needed)

	// Nothing was debited or drawn.
	mockTx.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertNotCalled(t, "AddToStack", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPull_NoEligibleCards(t *testing.T) {
	// Single rarity-1 card locked behind level 10; a level-1 player has no
	// eligible card for any sampled rarity.
	cat, err := catalog.New(&catalog.Config{
		Version: "test",
		Cards:   []domain.CardDefinition{testCard(1, 1, 10)},
	})
	require.NoError(t, err)

	mockRepo := new(MockRepository)
	mockTx := new(MockTx)
	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockPlayer", mock.Anything, "user-1").Return(testPlayer(1000), nil)
	mockTx.On("Debit", mock.Anything, "user-1", int64(10)).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)

	svc := NewService(mockRepo, cat, testSeed)

	_, err = svc.Pull(context.Background(), "user-1", domain.PackageBase, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoEligibleCards)

	// The debit happened inside the tx but the tx never committed.
	mockTx.AssertNotCalled(t, "Commit", mock.Anything)
	mockTx.AssertCalled(t, "Rollback", mock.Anything)
}

func TestPull_InvalidInput(t *testing.T) {
	svc := NewService(new(MockRepository), fullCatalog(t), testSeed)

	tests := []struct {
		name  string
		pkg   domain.Package
		times int
	}{
		{"unknown package", domain.Package("mystery"), 5},
		{"zero times", domain.PackageBase, 0},
		{"too many times", domain.PackageBase, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Pull(context.Background(), "user-1", tt.pkg, tt.times)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSampleRarity_WeightBoundaries(t *testing.T) {
	tests := []struct {
		roll   int
		rarity int
	}{
		{0, 1},
		{74, 1},
		{75, 2},
		{94, 2},
		{95, 3},
		{98, 3},
		{99, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.rarity, sampleRarity(tt.roll), "roll %d", tt.roll)
	}
}
