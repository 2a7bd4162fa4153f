// Package account is the read surface over the external player-account
// collaborator. The engine consumes level and balance; debits, credits and
// exp grants run through AccountOps inside engine transactions.
package account

import (
	"context"
	"fmt"

	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/repository"
)

// Service defines the interface for player profile reads
type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.Player, error)
}

type service struct {
	repo repository.Account
}

// NewService creates a new account service
func NewService(repo repository.Account) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.Player, error) {
	log := logger.FromContext(ctx)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	player, err := s.repo.GetPlayer(ctx, userID)
	if err != nil {
		log.Error("Failed to get player", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}
