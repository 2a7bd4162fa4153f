package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cardledger/internal/catalog"
	"cardledger/internal/domain"
	"cardledger/internal/logger"
	"cardledger/internal/metrics"
	"cardledger/internal/repository"
)

// tradeWindow is the trailing period the purchase rate limit counts over.
const tradeWindow = 24 * time.Hour

// BuyTarget identifies what a buyer wants. A direct ListingID is tried first;
// when it no longer resolves and CardID is set, the engine falls back to the
// cheapest public listing for the card within Slippage over the price cap.
type BuyTarget struct {
	ListingID int64 `json:"listing_id,omitempty"`
	CardID    int64 `json:"card_id,omitempty"`
	Slippage  int64 `json:"slippage,omitempty"`

	// AllowFriendsOnly widens direct-listing resolution to friends-only
	// listings. The caller asserts the buyer may see the listing; friendship
	// itself is validated by an external collaborator. The slippage fallback
	// stays public-only either way.
	AllowFriendsOnly bool `json:"allow_friends_only,omitempty"`
}

// BuyResult contains the outcome of a completed purchase
type BuyResult struct {
	ListingID int64  `json:"listing_id"`
	CardID    int64  `json:"card_id"`
	SellerID  string `json:"seller_id"`
	Count     int64  `json:"count"`
	UnitPrice int64  `json:"unit_price"`
	TotalCost int64  `json:"total_cost"`
}

// DelistResult contains the outcome of a delist operation. Shortfall counts
// units that were already sold to others before the delist ran; it is an
// informational field, not an error.
type DelistResult struct {
	Returned  int64 `json:"returned"`
	Shortfall int64 `json:"shortfall"`
}

// Service defines the interface for marketplace operations
type Service interface {
	List(ctx context.Context, userID string, cardID, count, unitPrice int64, visibility domain.Visibility) error
	Buy(ctx context.Context, buyerID string, target BuyTarget, count, maxUnitPrice int64) (*BuyResult, error)
	Delist(ctx context.Context, userID string, cardID, count int64) (*DelistResult, error)
	Browse(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error)
	History(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error)
}

type service struct {
	repo           repository.Market
	catalog        *catalog.Catalog
	maxDailyTrades int
	now            func() time.Time // injected for rate-limit window tests
}

// NewService creates a new market service
func NewService(repo repository.Market, cat *catalog.Catalog, maxDailyTrades int) Service {
	return &service{
		repo:           repo,
		catalog:        cat,
		maxDailyTrades: maxDailyTrades,
		now:            time.Now,
	}
}

func (s *service) List(ctx context.Context, userID string, cardID, count, unitPrice int64, visibility domain.Visibility) error {
	log := logger.FromContext(ctx)
	log.Info("List called", "userID", userID, "cardID", cardID, "count", count, "unitPrice", unitPrice, "visibility", visibility)

	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidInput)
	}
	if unitPrice < 1 {
		return fmt.Errorf("%w: unit price must be at least 1", domain.ErrInvalidInput)
	}
	if !visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", domain.ErrInvalidInput, visibility)
	}
	if s.catalog.Card(cardID) == nil {
		return fmt.Errorf("%w: card %d", domain.ErrNotFound, cardID)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	// Listing row before ledger rows, the same order Delist takes them in.
	if _, err := tx.LockOwnListing(ctx, cardID, userID); err != nil {
		log.Error("Failed to lock own listing", "error", err)
		return fmt.Errorf("failed to lock own listing: %w", err)
	}

	held, err := tx.LockStacks(ctx, userID, []int64{cardID})
	if err != nil {
		log.Error("Failed to lock stack", "error", err)
		return fmt.Errorf("failed to lock stack: %w", err)
	}
	if held[cardID] < count {
		return fmt.Errorf("%w: have %d of card %d, need %d", domain.ErrInsufficientStock, held[cardID], cardID, count)
	}

	if err := tx.TakeFromStack(ctx, userID, cardID, count); err != nil {
		log.Error("Failed to take cards for listing", "error", err)
		return fmt.Errorf("failed to take cards for listing: %w", err)
	}
	if err := tx.UpsertListing(ctx, cardID, userID, count, unitPrice, visibility); err != nil {
		log.Error("Failed to upsert listing", "error", err)
		return fmt.Errorf("failed to upsert listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.ListingsCreated.Inc()
	log.Info("Listing created", "userID", userID, "cardID", cardID, "count", count)
	return nil
}

func (s *service) Buy(ctx context.Context, buyerID string, target BuyTarget, count, maxUnitPrice int64) (*BuyResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Buy called", "buyerID", buyerID, "listingID", target.ListingID, "cardID", target.CardID, "count", count, "maxUnitPrice", maxUnitPrice)

	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidInput)
	}
	if target.ListingID == 0 && target.CardID == 0 {
		return nil, fmt.Errorf("%w: a listing id or card id is required", domain.ErrInvalidInput)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	listing, err := s.resolveListing(ctx, tx, target, count, maxUnitPrice)
	if err != nil {
		return nil, err
	}

	// Preconditions in fixed order, each its own failure.
	if listing.OwnerID == buyerID {
		return nil, domain.ErrSelfTrade
	}

	trades, err := tx.CountBuyerTrades(ctx, buyerID, s.now().Add(-tradeWindow))
	if err != nil {
		log.Error("Failed to count buyer trades", "error", err)
		return nil, fmt.Errorf("failed to count buyer trades: %w", err)
	}
	if trades >= s.maxDailyTrades {
		return nil, &domain.RateLimitError{Limit: s.maxDailyTrades}
	}

	buyer, err := s.lockTradingPair(ctx, tx, buyerID, listing.OwnerID)
	if err != nil {
		return nil, err
	}

	totalCost := listing.UnitPrice * count
	if buyer.Balance < totalCost {
		return nil, &domain.InsufficientFundsError{Needed: totalCost}
	}

	card := s.catalog.Card(listing.CardID)
	if card == nil {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotFound, listing.CardID)
	}
	if buyer.Level < card.UnlockLevel {
		return nil, &domain.LevelLockedError{UnlockLevel: card.UnlockLevel}
	}

	if err := tx.AddToStack(ctx, buyerID, listing.CardID, count); err != nil {
		log.Error("Failed to add bought cards", "error", err)
		return nil, fmt.Errorf("failed to add bought cards: %w", err)
	}
	if err := tx.Debit(ctx, buyerID, totalCost); err != nil {
		log.Error("Failed to debit buyer", "error", err)
		return nil, fmt.Errorf("failed to debit buyer: %w", err)
	}
	if err := tx.Credit(ctx, listing.OwnerID, totalCost); err != nil {
		log.Error("Failed to credit seller", "error", err)
		return nil, fmt.Errorf("failed to credit seller: %w", err)
	}
	if err := tx.ReduceListing(ctx, listing.ID, count); err != nil {
		log.Error("Failed to reduce listing", "error", err)
		return nil, fmt.Errorf("failed to reduce listing: %w", err)
	}

	record := &domain.TradeRecord{
		BuyerID:   buyerID,
		SellerID:  listing.OwnerID,
		CardID:    listing.CardID,
		Count:     count,
		UnitPrice: listing.UnitPrice,
	}
	if err := tx.AppendTradeRecord(ctx, record); err != nil {
		log.Error("Failed to append trade record", "error", err)
		return nil, fmt.Errorf("failed to append trade record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.TradesCompleted.Inc()
	metrics.CurrencySpent.Add(float64(totalCost))
	metrics.CurrencyEarned.Add(float64(totalCost))

	log.Info("Buy completed", "buyerID", buyerID, "sellerID", listing.OwnerID, "cardID", listing.CardID, "count", count, "totalCost", totalCost)
	return &BuyResult{
		ListingID: listing.ID,
		CardID:    listing.CardID,
		SellerID:  listing.OwnerID,
		Count:     count,
		UnitPrice: listing.UnitPrice,
		TotalCost: totalCost,
	}, nil
}

// resolveListing locks the listing the purchase will run against. The direct
// listing wins when it still satisfies the request; a friends-only listing
// only resolves directly when the target allows it. Otherwise the slippage
// fallback picks the cheapest qualifying public listing for the card.
func (s *service) resolveListing(ctx context.Context, tx repository.MarketTx, target BuyTarget, count, maxUnitPrice int64) (*domain.Listing, error) {
	log := logger.FromContext(ctx)

	if target.ListingID != 0 {
		listing, err := tx.LockListing(ctx, target.ListingID)
		if err != nil {
			log.Error("Failed to lock listing", "error", err, "listingID", target.ListingID)
			return nil, fmt.Errorf("failed to lock listing: %w", err)
		}
		if listing != nil && listing.Count >= count && listing.UnitPrice <= maxUnitPrice &&
			(listing.Visibility == domain.VisibilityPublic || target.AllowFriendsOnly) {
			return listing, nil
		}
	}

	if target.CardID != 0 {
		listing, err := tx.LockCheapestPublicListing(ctx, target.CardID, count, maxUnitPrice+target.Slippage)
		if err != nil {
			log.Error("Failed to lock fallback listing", "error", err, "cardID", target.CardID)
			return nil, fmt.Errorf("failed to lock fallback listing: %w", err)
		}
		if listing != nil {
			return listing, nil
		}
	}

	return nil, fmt.Errorf("%w: no listing satisfies the request", domain.ErrNotFound)
}

// lockTradingPair locks the buyer and seller rows in user-id order so two
// crossing purchases between the same pair cannot deadlock. Returns the
// buyer's locked state.
func (s *service) lockTradingPair(ctx context.Context, tx repository.MarketTx, buyerID, sellerID string) (*domain.Player, error) {
	log := logger.FromContext(ctx)

	first, second := buyerID, sellerID
	if second < first {
		first, second = second, first
	}

	var buyer *domain.Player
	for _, id := range []string{first, second} {
		player, err := tx.LockPlayer(ctx, id)
		if err != nil {
			log.Error("Failed to lock player", "error", err, "userID", id)
			return nil, fmt.Errorf("failed to lock player: %w", err)
		}
		if id == buyerID {
			buyer = player
		}
	}
	return buyer, nil
}

func (s *service) Delist(ctx context.Context, userID string, cardID, count int64) (*DelistResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Delist called", "userID", userID, "cardID", cardID, "count", count)

	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidInput)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	listing, err := tx.LockOwnListing(ctx, cardID, userID)
	if err != nil {
		log.Error("Failed to lock own listing", "error", err)
		return nil, fmt.Errorf("failed to lock own listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: no listing for card %d", domain.ErrNotFound, cardID)
	}

	// Units already sold to others come back as shortfall, never an error.
	actual := count
	if listing.Count < actual {
		actual = listing.Count
	}

	if err := tx.ReduceListing(ctx, listing.ID, actual); err != nil {
		log.Error("Failed to reduce listing", "error", err)
		return nil, fmt.Errorf("failed to reduce listing: %w", err)
	}
	if err := tx.AddToStack(ctx, userID, cardID, actual); err != nil {
		log.Error("Failed to return cards to ledger", "error", err)
		return nil, fmt.Errorf("failed to return cards to ledger: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Delist completed", "userID", userID, "cardID", cardID, "returned", actual, "shortfall", count-actual)
	return &DelistResult{Returned: actual, Shortfall: count - actual}, nil
}

func (s *service) Browse(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	listings, err := s.repo.BrowseListings(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Card-level filters resolve against the catalog, not the listing table.
	if filter.Package == "" && filter.NameContains == "" && filter.MaxLevel == 0 {
		return listings, nil
	}

	needle := strings.ToLower(filter.NameContains)
	filtered := make([]domain.Listing, 0, len(listings))
	for _, listing := range listings {
		card := s.catalog.Card(listing.CardID)
		if card == nil {
			continue
		}
		if filter.Package != "" && card.Package != filter.Package {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(card.Name), needle) {
			continue
		}
		if filter.MaxLevel != 0 && card.UnlockLevel > filter.MaxLevel {
			continue
		}
		filtered = append(filtered, listing)
	}
	return filtered, nil
}

func (s *service) SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error) {
	return s.repo.SellerListings(ctx, ownerID, includeFriendsOnly)
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error) {
	return s.repo.TradeHistory(ctx, userID, limit)
}
