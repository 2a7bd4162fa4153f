package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// LedgerRepository implements the ledger repository for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetStack returns the count a user holds of one card, 0 if absent.
func (r *LedgerRepository) GetStack(ctx context.Context, userID string, cardID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT count FROM card_ledger WHERE user_id = $1 AND card_id = $2`,
		userID, cardID).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger row: %w", err)
	}
	return count, nil
}

// GetStacks returns all of a user's ledger rows ordered by card id.
func (r *LedgerRepository) GetStacks(ctx context.Context, userID string) ([]domain.CardStack, error) {
	rows, err := r.db.Query(ctx,
		`SELECT card_id, count FROM card_ledger WHERE user_id = $1 ORDER BY card_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger rows: %w", err)
	}
	defer rows.Close()

	var stacks []domain.CardStack
	for rows.Next() {
		var s domain.CardStack
		if err := rows.Scan(&s.CardID, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		stacks = append(stacks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}
	return stacks, nil
}

// BeginTx starts a new ledger transaction
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	return begin(ctx, r.db)
}
