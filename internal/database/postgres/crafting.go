package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/repository"
)

// CraftingRepository implements the compose/decompose repository for PostgreSQL
type CraftingRepository struct {
	db *pgxpool.Pool
}

// NewCraftingRepository creates a new CraftingRepository
func NewCraftingRepository(db *pgxpool.Pool) *CraftingRepository {
	return &CraftingRepository{db: db}
}

// BeginTx starts a new crafting transaction
func (r *CraftingRepository) BeginTx(ctx context.Context) (repository.CraftingTx, error) {
	return begin(ctx, r.db)
}
