package repository

import (
	"context"

	"cardledger/internal/domain"
)

// Tx is the base contract for one atomic engine transaction. Every mutating
// operation runs inside exactly one Tx: all row locks acquired through the
// tx are held until Commit or Rollback.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// LedgerOps are the ledger primitives available inside a transaction.
//
// LockStacks must acquire exclusive row locks in ascending card-id order so
// that concurrent operations touching overlapping card sets cannot deadlock.
// TakeFromStack assumes the row is already locked via LockStacks.
type LedgerOps interface {
	// LockStacks locks the (user, card) rows for the given ids and returns
	// the current counts. Absent rows are reported with count 0 and are not
	// locked (they cannot be, they do not exist).
	LockStacks(ctx context.Context, userID string, cardIDs []int64) (map[int64]int64, error)

	// AddToStack creates or increments a ledger row. Never fails on state.
	AddToStack(ctx context.Context, userID string, cardID, count int64) error

	// TakeFromStack decrements a ledger row, deleting it when the count
	// reaches zero. Returns domain.ErrInsufficientStock when the row holds
	// fewer than count units.
	TakeFromStack(ctx context.Context, userID string, cardID, count int64) error
}

// AccountOps are the player-account collaborator operations available inside
// a transaction. The account row must be locked (LockPlayer) before any check
// that depends on its balance or level.
type AccountOps interface {
	// LockPlayer locks the player row and returns its current state.
	// Returns domain.ErrNotFound for unknown players.
	LockPlayer(ctx context.Context, userID string) (*domain.Player, error)

	// Debit subtracts amount from a locked player's balance. Callers check
	// sufficiency against the locked row first.
	Debit(ctx context.Context, userID string, amount int64) error

	// Credit adds amount to a locked player's balance.
	Credit(ctx context.Context, userID string, amount int64) error

	// GrantExp adds experience to a locked player.
	GrantExp(ctx context.Context, userID string, exp int64) error
}
