package crafting

import (
	"context"
	"fmt"
	"sort"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/metrics"
	"cardledger/internal/repository"
)

// ComposeResult contains the outcome of a compose operation
type ComposeResult struct {
	CardID   int64              `json:"card_id"`
	Created  int64              `json:"created"`
	Consumed []domain.CardStack `json:"consumed"`
}

// DecomposeResult contains the outcome of a decompose operation
type DecomposeResult struct {
	CardID    int64              `json:"card_id"`
	Destroyed int64              `json:"destroyed"`
	Yield     []domain.CardStack `json:"yield"`
}

// Service defines the interface for compose and decompose operations
type Service interface {
	Compose(ctx context.Context, userID string, targetCardID, multiplier int64) (*ComposeResult, error)
	Decompose(ctx context.Context, userID string, sourceCardID, count int64) (*DecomposeResult, error)
}

// AccountReader provides the player level needed for compose unlock checks.
type AccountReader interface {
	GetPlayer(ctx context.Context, userID string) (*domain.Player, error)
}

type service struct {
	repo    repository.Crafting
	account AccountReader
	catalog *catalog.Catalog

	// scaleYieldByCount multiplies decompose yields by the destroyed count
	// when enabled. Disabled by default: one decompose call yields one
	// application of the yield table regardless of count.
	scaleYieldByCount bool
}

// NewService creates a new crafting service
func NewService(repo repository.Crafting, account AccountReader, cat *catalog.Catalog, scaleYieldByCount bool) Service {
	return &service{
		repo:              repo,
		account:           account,
		catalog:           cat,
		scaleYieldByCount: scaleYieldByCount,
	}
}

func (s *service) Compose(ctx context.Context, userID string, targetCardID, multiplier int64) (*ComposeResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Compose called", "userID", userID, "cardID", targetCardID, "multiplier", multiplier)

	if multiplier < 1 {
		return nil, fmt.Errorf("%w: multiplier must be at least 1", domain.ErrInvalidInput)
	}

	target := s.catalog.Card(targetCardID)
	if target == nil {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotFound, targetCardID)
	}
	if !target.Composable() {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotComposable, targetCardID)
	}

	player, err := s.account.GetPlayer(ctx, userID)
	if err != nil {
		log.Error("Failed to get player", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player.Level < target.UnlockLevel {
		return nil, &domain.LevelLockedError{UnlockLevel: target.UnlockLevel}
	}

	// Required materials for the whole batch, keyed by card id.
	required := make(map[int64]int64, len(target.ComposeMaterials))
	for cardID, qty := range target.ComposeMaterials {
		required[cardID] = qty * multiplier
	}
	materialIDs := sortedKeys(required)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	// One ascending lock pass over every ledger row the craft touches,
	// materials and target alike. Locking the target only at the final
	// upsert would let two crafts with swapped material/target roles
	// acquire the same rows in opposite orders.
	held, err := tx.LockStacks(ctx, userID, withExtraIDs(required, targetCardID))
	if err != nil {
		log.Error("Failed to lock material stacks", "error", err)
		return nil, fmt.Errorf("failed to lock material stacks: %w", err)
	}

	// Full itemized shortfall before any mutation, not first-fail.
	var short []domain.Shortfall
	for _, cardID := range materialIDs {
		if missing := required[cardID] - held[cardID]; missing > 0 {
			short = append(short, domain.Shortfall{CardID: cardID, Missing: missing})
		}
	}
	if len(short) > 0 {
		return nil, &domain.ShortfallError{Sentinel: domain.ErrLackOfMaterials, Items: short}
	}

	consumed := make([]domain.CardStack, 0, len(materialIDs))
	for _, cardID := range materialIDs {
		if err := tx.TakeFromStack(ctx, userID, cardID, required[cardID]); err != nil {
			log.Error("Failed to take material", "error", err, "cardID", cardID)
			return nil, fmt.Errorf("failed to take material: %w", err)
		}
		consumed = append(consumed, domain.CardStack{CardID: cardID, Count: required[cardID]})
	}

	if err := tx.AddToStack(ctx, userID, targetCardID, multiplier); err != nil {
		log.Error("Failed to add composed card", "error", err, "cardID", targetCardID)
		return nil, fmt.Errorf("failed to add composed card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.CardsComposed.Add(float64(multiplier))

	log.Info("Compose completed", "userID", userID, "cardID", targetCardID, "created", multiplier)
	return &ComposeResult{CardID: targetCardID, Created: multiplier, Consumed: consumed}, nil
}

func (s *service) Decompose(ctx context.Context, userID string, sourceCardID, count int64) (*DecomposeResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Decompose called", "userID", userID, "cardID", sourceCardID, "count", count)

	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidInput)
	}

	source := s.catalog.Card(sourceCardID)
	if source == nil {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotFound, sourceCardID)
	}
	if !source.Decomposable() {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotDecomposable, sourceCardID)
	}

	yieldScale := int64(1)
	if s.scaleYieldByCount {
		yieldScale = count
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	// Source and yield rows locked together in one ascending pass.
	held, err := tx.LockStacks(ctx, userID, withExtraIDs(source.DecomposeMaterials, sourceCardID))
	if err != nil {
		log.Error("Failed to lock source stack", "error", err)
		return nil, fmt.Errorf("failed to lock source stack: %w", err)
	}
	if held[sourceCardID] < count {
		return nil, fmt.Errorf("%w: have %d of card %d, need %d", domain.ErrInsufficientStock, held[sourceCardID], sourceCardID, count)
	}

	if err := tx.TakeFromStack(ctx, userID, sourceCardID, count); err != nil {
		log.Error("Failed to take source cards", "error", err)
		return nil, fmt.Errorf("failed to take source cards: %w", err)
	}

	yieldIDs := sortedKeys(source.DecomposeMaterials)
	yield := make([]domain.CardStack, 0, len(yieldIDs))
	for _, cardID := range yieldIDs {
		qty := source.DecomposeMaterials[cardID] * yieldScale
		if err := tx.AddToStack(ctx, userID, cardID, qty); err != nil {
			log.Error("Failed to add yield material", "error", err, "cardID", cardID)
			return nil, fmt.Errorf("failed to add yield material: %w", err)
		}
		yield = append(yield, domain.CardStack{CardID: cardID, Count: qty})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.CardsDecomposed.Add(float64(count))

	log.Info("Decompose completed", "userID", userID, "cardID", sourceCardID, "destroyed", count)
	return &DecomposeResult{CardID: sourceCardID, Destroyed: count, Yield: yield}, nil
}

// sortedKeys returns the map's card ids in ascending order, the same order
// the store acquires row locks in.
func sortedKeys(m map[int64]int64) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// withExtraIDs returns the map's card ids plus the extras, deduplicated and
// ascending.
func withExtraIDs(m map[int64]int64, extra ...int64) []int64 {
	ids := make([]int64, 0, len(m)+len(extra))
	for id := range m {
		ids = append(ids, id)
	}
	for _, id := range extra {
		if _, ok := m[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
