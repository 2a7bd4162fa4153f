package domain

import "time"

// OrderStatus is the lifecycle state of a fulfillment order. Waiting is the
// only non-terminal state.
type OrderStatus string

const (
	OrderWaiting   OrderStatus = "waiting"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderExpired   OrderStatus = "expired"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a standing contract: deliver the required card basket, receive
// currency and experience. Orders are issued by an external process; the
// engine only transitions their status.
type Order struct {
	ID             int64           `json:"order_id"`
	UserID         string          `json:"user_id"`
	Required       map[int64]int64 `json:"required"`
	RewardCurrency int64           `json:"reward_currency"`
	RewardExp      int64           `json:"reward_exp"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// Expired reports whether the order's deadline has passed at now. Expiry is
// applied lazily: the stored status flips to OrderExpired the first time the
// order is read after the deadline.
func (o *Order) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// OrderReward is the payload returned by a successful fulfillment.
type OrderReward struct {
	Currency int64 `json:"currency"`
	Exp      int64 `json:"exp"`
}
