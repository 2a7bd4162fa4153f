package gacha

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/metrics"
	"cardledger/internal/repository"
)

// PullResult contains the outcome of a pull operation
type PullResult struct {
	Cards []domain.OwnedCard `json:"cards"`
	Cost  int64              `json:"cost"`
}

// Service defines the interface for draw operations
type Service interface {
	Pull(ctx context.Context, userID string, pkg domain.Package, times int) (*PullResult, error)
}

type service struct {
	repo    repository.Gacha
	catalog *catalog.Catalog

	// mu guards rng; *rand.Rand is not safe for concurrent use.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new gacha service. A zero seed selects a time-based
// seed; tests pass a fixed seed for reproducible draws.
func NewService(repo repository.Gacha, cat *catalog.Catalog, seed int64) Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &service{
		repo:    repo,
		catalog: cat,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *service) Pull(ctx context.Context, userID string, pkg domain.Package, times int) (*PullResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Pull called", "userID", userID, "package", pkg, "times", times)

	if !pkg.Valid() {
		return nil, fmt.Errorf("%w: unknown package %q", domain.ErrInvalidInput, pkg)
	}
	if times < MinDraws || times > MaxDraws {
		return nil, fmt.Errorf("%w: times must be between %d and %d", domain.ErrInvalidInput, MinDraws, MaxDraws)
	}

	cost := int64(times) * CostPerDraw

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	player, err := tx.LockPlayer(ctx, userID)
	if err != nil {
		log.Error("Failed to lock player", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}

	if player.Balance < cost {
		return nil, &domain.InsufficientFundsError{Needed: cost}
	}
	if err := tx.Debit(ctx, userID, cost); err != nil {
		log.Error("Failed to debit draw cost", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to debit draw cost: %w", err)
	}

	drawn, err := s.draw(pkg, player.Level, times)
	if err != nil {
		// Rollback voids the debit; the pull costs nothing when it fails.
		return nil, err
	}

	ids := make([]int64, 0, len(drawn))
	for id := range drawn {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := tx.AddToStack(ctx, userID, id, drawn[id]); err != nil {
			log.Error("Failed to add drawn card", "error", err, "cardID", id)
			return nil, fmt.Errorf("failed to add drawn card: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result := &PullResult{
		Cards: make([]domain.OwnedCard, 0, len(ids)),
		Cost:  cost,
	}
	for _, id := range ids {
		card := s.catalog.Card(id)
		result.Cards = append(result.Cards, domain.OwnedCard{
			CardID:  card.ID,
			Name:    card.Name,
			Image:   card.Image,
			Rarity:  card.Rarity,
			Package: card.Package,
			Count:   drawn[id],
		})
		metrics.CardsDrawn.WithLabelValues(string(pkg), strconv.Itoa(card.Rarity)).Add(float64(drawn[id]))
	}
	metrics.CurrencySpent.Add(float64(cost))

	log.Info("Pull completed", "userID", userID, "package", pkg, "times", times, "cost", cost, "distinct", len(ids))
	return result, nil
}

// draw samples times cards and aggregates them by card id. Returns
// domain.ErrNoEligibleCards when a sampled rarity has no card the player has
// unlocked in the requested package.
func (s *service) draw(pkg domain.Package, playerLevel, times int) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drawn := make(map[int64]int64)
	for i := 0; i < times; i++ {
		rarity := sampleRarity(s.rng.Intn(totalWeight))

		eligible := s.catalog.Eligible(pkg, rarity, playerLevel)
		if len(eligible) == 0 {
			return nil, fmt.Errorf("%w: package %s rarity %d at level %d", domain.ErrNoEligibleCards, pkg, rarity, playerLevel)
		}

		card := eligible[s.rng.Intn(len(eligible))]
		drawn[card.ID]++
	}
	return drawn, nil
}

// sampleRarity maps a roll in [0, totalWeight) onto the weight table.
func sampleRarity(roll int) int {
	for _, rw := range rarityWeights {
		if roll < rw.weight {
			return rw.rarity
		}
		roll -= rw.weight
	}
	// Unreachable while the weights sum to totalWeight.
	return rarityWeights[len(rarityWeights)-1].rarity
}
