package repository

import (
	"context"

	"cardledger/internal/domain"
)

// Ledger defines the read-side interface for card ownership rows plus entry
// into ledger-only transactions.
type Ledger interface {
	// GetStack returns the count a user holds of one card, 0 if absent.
	GetStack(ctx context.Context, userID string, cardID int64) (int64, error)

	// GetStacks returns all of a user's ledger rows as a snapshot read.
	GetStacks(ctx context.Context, userID string) ([]domain.CardStack, error)

	BeginTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is a transaction limited to ledger rows.
type LedgerTx interface {
	Tx
	LedgerOps
}
