package repository

import (
	"context"

	"cardledger/internal/domain"
)

// Order defines the persistence interface for the fulfillment engine. Order
// issuance is an external process; the engine only reads orders and
// transitions their status.
type Order interface {
	BeginTx(ctx context.Context) (OrderTx, error)
}

// OrderTx is one fulfillment, cancellation or expiry-sweep transaction.
type OrderTx interface {
	Tx
	LedgerOps
	AccountOps

	// LockOrder locks an order row by id. Returns nil without error when no
	// such order exists.
	LockOrder(ctx context.Context, orderID int64) (*domain.Order, error)

	// LockWaitingOrders locks all of a user's waiting orders, oldest first.
	LockWaitingOrders(ctx context.Context, userID string) ([]domain.Order, error)

	// SetOrderStatus transitions a locked order's status.
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
}
