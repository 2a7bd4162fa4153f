package domain

import "time"

// TradeRecord is one completed purchase. Records are append-only: they are
// never updated or deleted, and the trailing-24h count per buyer backs the
// marketplace rate limit.
type TradeRecord struct {
	ID        int64     `json:"trade_id"`
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id"`
	CardID    int64     `json:"card_id"`
	Count     int64     `json:"count"`
	UnitPrice int64     `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}
