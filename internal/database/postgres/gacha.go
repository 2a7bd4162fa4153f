package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/repository"
)

// GachaRepository implements the draw-engine repository for PostgreSQL
type GachaRepository struct {
	db *pgxpool.Pool
}

// NewGachaRepository creates a new GachaRepository
func NewGachaRepository(db *pgxpool.Pool) *GachaRepository {
	return &GachaRepository{db: db}
}

// BeginTx starts a new draw transaction
func (r *GachaRepository) BeginTx(ctx context.Context) (repository.GachaTx, error) {
	return begin(ctx, r.db)
}
