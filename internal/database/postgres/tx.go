package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"cardledger/internal/domain"
)

// Tx wraps one pgx transaction and implements every engine transaction
// interface. Row locks taken through it are held until Commit or Rollback.
type Tx struct {
	tx pgx.Tx
}

func begin(ctx context.Context, db beginner) (*Tx, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Commit commits the transaction
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return fmt.Errorf("%s", domain.ErrMsgTxClosed)
	}
	return err
}

// LockStacks locks the (user, card) ledger rows in ascending card-id order
// and returns current counts. Absent rows report 0 and take no lock.
func (t *Tx) LockStacks(ctx context.Context, userID string, cardIDs []int64) (map[int64]int64, error) {
	if len(cardIDs) == 0 {
		return map[int64]int64{}, nil
	}

	// Postgres locks rows in fetch order; sorting here fixes the lock order
	// across every concurrent operation touching overlapping card sets.
	sorted := make([]int64, len(cardIDs))
	copy(sorted, cardIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	query := `
		SELECT card_id, count
		FROM card_ledger
		WHERE user_id = $1 AND card_id = ANY($2)
		ORDER BY card_id
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, userID, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger rows: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(sorted))
	for _, id := range sorted {
		counts[id] = 0
	}
	for rows.Next() {
		var cardID, count int64
		if err := rows.Scan(&cardID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		counts[cardID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}
	return counts, nil
}

// AddToStack creates or increments a ledger row.
func (t *Tx) AddToStack(ctx context.Context, userID string, cardID, count int64) error {
	if count <= 0 {
		return fmt.Errorf("%w: add count must be positive, got %d", domain.ErrInvalidInput, count)
	}
	query := `
		INSERT INTO card_ledger (user_id, card_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, card_id) DO UPDATE
		SET count = card_ledger.count + EXCLUDED.count
	`
	if _, err := t.tx.Exec(ctx, query, userID, cardID, count); err != nil {
		return fmt.Errorf("failed to add to ledger: %w", err)
	}
	return nil
}

// TakeFromStack decrements a previously locked ledger row, deleting it when
// the count reaches zero.
func (t *Tx) TakeFromStack(ctx context.Context, userID string, cardID, count int64) error {
	if count <= 0 {
		return fmt.Errorf("%w: take count must be positive, got %d", domain.ErrInvalidInput, count)
	}
	query := `
		UPDATE card_ledger
		SET count = count - $3
		WHERE user_id = $1 AND card_id = $2 AND count >= $3
		RETURNING count
	`
	var remaining int64
	err := t.tx.QueryRow(ctx, query, userID, cardID, count).Scan(&remaining)
	if err == pgx.ErrNoRows {
		return domain.ErrInsufficientStock
	}
	if err != nil {
		return fmt.Errorf("failed to take from ledger: %w", err)
	}

	if remaining == 0 {
		if _, err := t.tx.Exec(ctx,
			`DELETE FROM card_ledger WHERE user_id = $1 AND card_id = $2`,
			userID, cardID); err != nil {
			return fmt.Errorf("failed to delete depleted ledger row: %w", err)
		}
	}
	return nil
}

// LockPlayer locks the player-account row and returns its current state.
func (t *Tx) LockPlayer(ctx context.Context, userID string) (*domain.Player, error) {
	query := `
		SELECT user_id, username, level, balance, exp
		FROM players
		WHERE user_id = $1
		FOR UPDATE
	`
	var p domain.Player
	err := t.tx.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Username, &p.Level, &p.Balance, &p.Exp)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}
	return &p, nil
}

// Debit subtracts amount from a locked player's balance.
func (t *Tx) Debit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: debit amount must not be negative", domain.ErrInvalidInput)
	}
	query := `UPDATE players SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := t.tx.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to debit player: %w", err)
	}
	return nil
}

// Credit adds amount to a locked player's balance.
func (t *Tx) Credit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: credit amount must not be negative", domain.ErrInvalidInput)
	}
	query := `UPDATE players SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := t.tx.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to credit player: %w", err)
	}
	return nil
}

// GrantExp adds experience to a locked player.
func (t *Tx) GrantExp(ctx context.Context, userID string, exp int64) error {
	if exp < 0 {
		return fmt.Errorf("%w: exp amount must not be negative", domain.ErrInvalidInput)
	}
	query := `UPDATE players SET exp = exp + $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := t.tx.Exec(ctx, query, userID, exp); err != nil {
		return fmt.Errorf("failed to grant exp: %w", err)
	}
	return nil
}
