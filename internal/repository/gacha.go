package repository

import "context"

// Gacha defines the persistence interface for the draw engine.
type Gacha interface {
	BeginTx(ctx context.Context) (GachaTx, error)
}

// GachaTx is one draw transaction: debit the player, then write the
// aggregated draw results to the ledger.
type GachaTx interface {
	Tx
	LedgerOps
	AccountOps
}
