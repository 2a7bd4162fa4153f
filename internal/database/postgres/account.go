package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/domain"
)

// AccountRepository implements the player-account read surface for PostgreSQL
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetPlayer returns the player's current state without locking.
func (r *AccountRepository) GetPlayer(ctx context.Context, userID string) (*domain.Player, error) {
	query := `SELECT user_id, username, level, balance, exp FROM players WHERE user_id = $1`

	var p domain.Player
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Username, &p.Level, &p.Balance, &p.Exp)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}
