package repository

import (
	"context"

	"cardledger/internal/domain"
)

// Account defines the read-side interface for the player-account
// collaborator. Mutation happens only through AccountOps inside an engine
// transaction; the engine never owns the account lifecycle.
type Account interface {
	// GetPlayer returns the player's current state without locking.
	// Returns domain.ErrNotFound for unknown players.
	GetPlayer(ctx context.Context, userID string) (*domain.Player, error)
}
