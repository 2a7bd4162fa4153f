package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/metrics"
	"cardledger/internal/repository"
)

// Service defines the interface for order fulfillment operations
type Service interface {
	Complete(ctx context.Context, userID string, orderID int64) (*domain.OrderReward, error)
	Cancel(ctx context.Context, userID string, orderID int64) error
	PendingOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

type service struct {
	repo repository.Order
	now  func() time.Time // injected for expiry tests
}

// NewService creates a new order service
func NewService(repo repository.Order) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Complete(ctx context.Context, userID string, orderID int64) (*domain.OrderReward, error) {
	log := logger.FromContext(ctx)
	log.Info("Complete called", "userID", userID, "orderID", orderID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	ord, err := s.lockWaitingOrder(ctx, tx, userID, orderID)
	if err != nil {
		return nil, err
	}

	// Player row before ledger rows, the order every engine takes them in.
	if _, err := tx.LockPlayer(ctx, userID); err != nil {
		log.Error("Failed to lock player", "error", err)
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}

	requiredIDs := make([]int64, 0, len(ord.Required))
	for cardID := range ord.Required {
		requiredIDs = append(requiredIDs, cardID)
	}
	sort.Slice(requiredIDs, func(i, j int) bool { return requiredIDs[i] < requiredIDs[j] })

	held, err := tx.LockStacks(ctx, userID, requiredIDs)
	if err != nil {
		log.Error("Failed to lock required stacks", "error", err)
		return nil, fmt.Errorf("failed to lock required stacks: %w", err)
	}

	// Full itemized shortfall before any mutation.
	var short []domain.Shortfall
	for _, cardID := range requiredIDs {
		if missing := ord.Required[cardID] - held[cardID]; missing > 0 {
			short = append(short, domain.Shortfall{CardID: cardID, Missing: missing})
		}
	}
	if len(short) > 0 {
		return nil, &domain.ShortfallError{Sentinel: domain.ErrLackOfCards, Items: short}
	}

	for _, cardID := range requiredIDs {
		if err := tx.TakeFromStack(ctx, userID, cardID, ord.Required[cardID]); err != nil {
			log.Error("Failed to take required card", "error", err, "cardID", cardID)
			return nil, fmt.Errorf("failed to take required card: %w", err)
		}
	}

	if err := tx.SetOrderStatus(ctx, orderID, domain.OrderFulfilled); err != nil {
		log.Error("Failed to mark order fulfilled", "error", err)
		return nil, fmt.Errorf("failed to mark order fulfilled: %w", err)
	}

	if ord.RewardCurrency > 0 {
		if err := tx.Credit(ctx, userID, ord.RewardCurrency); err != nil {
			log.Error("Failed to credit reward", "error", err)
			return nil, fmt.Errorf("failed to credit reward: %w", err)
		}
	}
	if ord.RewardExp > 0 {
		if err := tx.GrantExp(ctx, userID, ord.RewardExp); err != nil {
			log.Error("Failed to grant reward exp", "error", err)
			return nil, fmt.Errorf("failed to grant reward exp: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.OrdersFulfilled.Inc()
	metrics.CurrencyEarned.Add(float64(ord.RewardCurrency))

	log.Info("Order fulfilled", "userID", userID, "orderID", orderID, "currency", ord.RewardCurrency, "exp", ord.RewardExp)
	return &domain.OrderReward{Currency: ord.RewardCurrency, Exp: ord.RewardExp}, nil
}

func (s *service) Cancel(ctx context.Context, userID string, orderID int64) error {
	log := logger.FromContext(ctx)
	log.Info("Cancel called", "userID", userID, "orderID", orderID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if _, err := s.lockWaitingOrder(ctx, tx, userID, orderID); err != nil {
		return err
	}

	if err := tx.SetOrderStatus(ctx, orderID, domain.OrderCancelled); err != nil {
		log.Error("Failed to mark order cancelled", "error", err)
		return fmt.Errorf("failed to mark order cancelled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Order cancelled", "userID", userID, "orderID", orderID)
	return nil
}

func (s *service) PendingOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	orders, err := tx.LockWaitingOrders(ctx, userID)
	if err != nil {
		log.Error("Failed to lock waiting orders", "error", err)
		return nil, fmt.Errorf("failed to lock waiting orders: %w", err)
	}

	// Sweep stale orders: the expired status is applied lazily the first
	// time an order is read past its deadline.
	now := s.now()
	pending := make([]domain.Order, 0, len(orders))
	for _, ord := range orders {
		if ord.Expired(now) {
			if err := tx.SetOrderStatus(ctx, ord.ID, domain.OrderExpired); err != nil {
				log.Error("Failed to expire order", "error", err, "orderID", ord.ID)
				return nil, fmt.Errorf("failed to expire order: %w", err)
			}
			continue
		}
		pending = append(pending, ord)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return pending, nil
}

// lockWaitingOrder locks the order and verifies it is the caller's and still
// fulfillable. Orders past their deadline are reclassified to expired in
// place and reported as not found, same as missing and foreign orders.
func (s *service) lockWaitingOrder(ctx context.Context, tx repository.OrderTx, userID string, orderID int64) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	ord, err := tx.LockOrder(ctx, orderID)
	if err != nil {
		log.Error("Failed to lock order", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if ord == nil || ord.UserID != userID || ord.Status != domain.OrderWaiting {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if ord.Expired(s.now()) {
		if err := tx.SetOrderStatus(ctx, orderID, domain.OrderExpired); err != nil {
			log.Error("Failed to expire order", "error", err, "orderID", orderID)
			return nil, fmt.Errorf("failed to expire order: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			log.Error("Failed to commit expiry", "error", err)
			return nil, fmt.Errorf("failed to commit expiry: %w", err)
		}
		return nil, fmt.Errorf("%w: order %d expired", domain.ErrNotFound, orderID)
	}
	return ord, nil
}
