package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// OrderRepository implements the order repository for PostgreSQL
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// BeginTx starts a new order transaction
func (r *OrderRepository) BeginTx(ctx context.Context) (repository.OrderTx, error) {
	return begin(ctx, r.db)
}

const orderColumns = `order_id, user_id, required, reward_currency, reward_exp, status, created_at, expires_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var requiredJSON []byte
	err := row.Scan(&o.ID, &o.UserID, &requiredJSON, &o.RewardCurrency, &o.RewardExp, &o.Status, &o.CreatedAt, &o.ExpiresAt)
	if err != nil {
		return nil, err
	}

	required, err := decodeRequired(requiredJSON)
	if err != nil {
		return nil, err
	}
	o.Required = required
	return &o, nil
}

// decodeRequired converts the JSONB object (string keys) into the card-id map.
func decodeRequired(raw []byte) (map[int64]int64, error) {
	var byName map[string]int64
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("failed to decode order requirements: %w", err)
	}
	required := make(map[int64]int64, len(byName))
	for key, qty := range byName {
		cardID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid card id %q in order requirements: %w", key, err)
		}
		required[cardID] = qty
	}
	return required, nil
}

// LockOrder locks an order row by id.
func (t *Tx) LockOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE`
	o, err := scanOrder(t.tx.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return o, nil
}

// LockWaitingOrders locks all of a user's waiting orders, oldest first.
func (t *Tx) LockWaitingOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND status = 'waiting'
		ORDER BY order_id
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock waiting orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

// SetOrderStatus transitions a locked order's status.
func (t *Tx) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if _, err := t.tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE order_id = $1`,
		orderID, status); err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	return nil
}
