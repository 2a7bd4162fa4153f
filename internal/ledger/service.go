// Package ledger exposes the read side of card ownership: box inspection
// joins raw ledger rows with catalog display data. All mutation of ledger
// rows happens inside the engine transactions of the other services.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/repository"
)

// Service defines the interface for box inspection
type Service interface {
	// GetBox returns the user's owned cards joined with catalog fields,
	// narrowed by the filter, ordered by card id.
	GetBox(ctx context.Context, userID string, filter domain.BoxFilter) ([]domain.OwnedCard, error)

	// GetStack returns how many units of one card the user holds.
	GetStack(ctx context.Context, userID string, cardID int64) (int64, error)
}

type service struct {
	repo    repository.Ledger
	catalog *catalog.Catalog
}

// NewService creates a new ledger service
func NewService(repo repository.Ledger, cat *catalog.Catalog) Service {
	return &service{repo: repo, catalog: cat}
}

func (s *service) GetBox(ctx context.Context, userID string, filter domain.BoxFilter) ([]domain.OwnedCard, error) {
	log := logger.FromContext(ctx)

	if filter.Package != "" && !filter.Package.Valid() {
		return nil, fmt.Errorf("%w: unknown package %q", domain.ErrInvalidInput, filter.Package)
	}
	if filter.Rarity != 0 && (filter.Rarity < domain.MinRarity || filter.Rarity > domain.MaxRarity) {
		return nil, fmt.Errorf("%w: rarity %d out of range", domain.ErrInvalidInput, filter.Rarity)
	}

	stacks, err := s.repo.GetStacks(ctx, userID)
	if err != nil {
		log.Error("Failed to get ledger rows", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to get ledger rows: %w", err)
	}

	needle := strings.ToLower(filter.NameContains)
	owned := make([]domain.OwnedCard, 0, len(stacks))
	for _, stack := range stacks {
		card := s.catalog.Card(stack.CardID)
		if card == nil {
			// A ledger row for a card the catalog no longer carries. Keep
			// the row (the ledger is authoritative) but skip display.
			log.Warn("Ledger row references unknown card", "cardID", stack.CardID, "userID", userID)
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(card.Name), needle) {
			continue
		}
		if filter.Rarity != 0 && card.Rarity != filter.Rarity {
			continue
		}
		if filter.Package != "" && card.Package != filter.Package {
			continue
		}
		owned = append(owned, domain.OwnedCard{
			CardID:  card.ID,
			Name:    card.Name,
			Image:   card.Image,
			Rarity:  card.Rarity,
			Package: card.Package,
			Count:   stack.Count,
		})
	}
	return owned, nil
}

func (s *service) GetStack(ctx context.Context, userID string, cardID int64) (int64, error) {
	if s.catalog.Card(cardID) == nil {
		return 0, fmt.Errorf("%w: card %d", domain.ErrNotFound, cardID)
	}
	return s.repo.GetStack(ctx, userID, cardID)
}
