package repository

import (
	"context"
	"time"

	"cardledger/internal/domain"
)

// Market defines the persistence interface for the marketplace engine.
type Market interface {
	// BrowseListings returns public listings matching the filter, ordered by
	// unit price then listing id.
	BrowseListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)

	// SellerListings returns one seller's listings. includeFriendsOnly
	// widens the result beyond public listings; friendship itself is
	// validated by an external collaborator.
	SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error)

	// TradeHistory returns a user's trades (either side), newest first.
	TradeHistory(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error)

	BeginTx(ctx context.Context) (MarketTx, error)
}

// MarketTx is one list, buy or delist transaction.
type MarketTx interface {
	Tx
	LedgerOps
	AccountOps

	// LockListing locks a listing row by id. Returns nil without error when
	// the listing no longer exists.
	LockListing(ctx context.Context, listingID int64) (*domain.Listing, error)

	// LockOwnListing locks the unique (card, owner) listing row. Returns nil
	// without error when the owner has no listing for the card.
	LockOwnListing(ctx context.Context, cardID int64, ownerID string) (*domain.Listing, error)

	// LockCheapestPublicListing locks the cheapest public listing for a card
	// with count >= minCount and unit price <= maxUnitPrice, ties broken by
	// listing id ascending. Returns nil without error when none qualifies.
	LockCheapestPublicListing(ctx context.Context, cardID, minCount, maxUnitPrice int64) (*domain.Listing, error)

	// UpsertListing creates the (card, owner) listing or accumulates count
	// into the existing one, overwriting price and visibility.
	UpsertListing(ctx context.Context, cardID int64, ownerID string, count, unitPrice int64, visibility domain.Visibility) error

	// ReduceListing decrements a locked listing's count, deleting the row at
	// zero.
	ReduceListing(ctx context.Context, listingID, count int64) error

	// CountBuyerTrades returns how many purchases the buyer made since the
	// given time.
	CountBuyerTrades(ctx context.Context, buyerID string, since time.Time) (int, error)

	// AppendTradeRecord writes one immutable trade record.
	AppendTradeRecord(ctx context.Context, record *domain.TradeRecord) error
}
