package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardledger/internal/domain"
	"cardledger/internal/repository"
)

// MarketRepository implements the marketplace repository for PostgreSQL
type MarketRepository struct {
	db *pgxpool.Pool
}

// NewMarketRepository creates a new MarketRepository
func NewMarketRepository(db *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{db: db}
}

// BeginTx starts a new marketplace transaction
func (r *MarketRepository) BeginTx(ctx context.Context) (repository.MarketTx, error) {
	return begin(ctx, r.db)
}

const listingColumns = `listing_id, card_id, owner_id, count, unit_price, visibility, created_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(&l.ID, &l.CardID, &l.OwnerID, &l.Count, &l.UnitPrice, &l.Visibility, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// BrowseListings returns public listings matching the filter, cheapest first.
// Card-level filters (package, name, unlock level) are resolved by the
// service against the catalog; this query only narrows by price band.
func (r *MarketRepository) BrowseListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listing
		WHERE visibility = 'public'
		  AND ($1 = 0 OR card_id = $1)
		  AND ($2 = 0 OR unit_price >= $2)
		  AND ($3 = 0 OR unit_price <= $3)
		ORDER BY unit_price, listing_id
	`
	rows, err := r.db.Query(ctx, query, filter.CardID, filter.PriceMin, filter.PriceMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// SellerListings returns one seller's listings ordered by card id.
func (r *MarketRepository) SellerListings(ctx context.Context, ownerID string, includeFriendsOnly bool) ([]domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listing
		WHERE owner_id = $1 AND (visibility = 'public' OR $2)
		ORDER BY card_id
	`
	rows, err := r.db.Query(ctx, query, ownerID, includeFriendsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}
	return listings, nil
}

// TradeHistory returns a user's trades on either side, newest first.
func (r *MarketRepository) TradeHistory(ctx context.Context, userID string, limit int) ([]domain.TradeRecord, error) {
	query := `
		SELECT trade_id, buyer_id, seller_id, card_id, count, unit_price, created_at
		FROM trade_record
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC, trade_id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade history: %w", err)
	}
	defer rows.Close()

	var records []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		if err := rows.Scan(&rec.ID, &rec.BuyerID, &rec.SellerID, &rec.CardID, &rec.Count, &rec.UnitPrice, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trade records: %w", err)
	}
	return records, nil
}

// LockListing locks a listing row by id.
func (t *Tx) LockListing(ctx context.Context, listingID int64) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listing WHERE listing_id = $1 FOR UPDATE`
	l, err := scanListing(t.tx.QueryRow(ctx, query, listingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	return l, nil
}

// LockOwnListing locks the unique (card, owner) listing row.
func (t *Tx) LockOwnListing(ctx context.Context, cardID int64, ownerID string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listing WHERE card_id = $1 AND owner_id = $2 FOR UPDATE`
	l, err := scanListing(t.tx.QueryRow(ctx, query, cardID, ownerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock own listing: %w", err)
	}
	return l, nil
}

// LockCheapestPublicListing locks the cheapest qualifying public listing for
// a card. Ties break by listing id ascending so slippage fallback is
// deterministic.
func (t *Tx) LockCheapestPublicListing(ctx context.Context, cardID, minCount, maxUnitPrice int64) (*domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listing
		WHERE card_id = $1 AND visibility = 'public' AND count >= $2 AND unit_price <= $3
		ORDER BY unit_price, listing_id
		LIMIT 1
		FOR UPDATE
	`
	l, err := scanListing(t.tx.QueryRow(ctx, query, cardID, minCount, maxUnitPrice))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock fallback listing: %w", err)
	}
	return l, nil
}

// UpsertListing creates the (card, owner) listing or accumulates into it,
// overwriting price and visibility with the latest call's values.
func (t *Tx) UpsertListing(ctx context.Context, cardID int64, ownerID string, count, unitPrice int64, visibility domain.Visibility) error {
	query := `
		INSERT INTO listing (card_id, owner_id, count, unit_price, visibility)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (card_id, owner_id) DO UPDATE
		SET count = listing.count + EXCLUDED.count,
		    unit_price = EXCLUDED.unit_price,
		    visibility = EXCLUDED.visibility
	`
	if _, err := t.tx.Exec(ctx, query, cardID, ownerID, count, unitPrice, visibility); err != nil {
		return fmt.Errorf("failed to upsert listing: %w", err)
	}
	return nil
}

// ReduceListing decrements a locked listing's count, deleting the row at zero.
func (t *Tx) ReduceListing(ctx context.Context, listingID, count int64) error {
	query := `
		UPDATE listing
		SET count = count - $2
		WHERE listing_id = $1 AND count >= $2
		RETURNING count
	`
	var remaining int64
	err := t.tx.QueryRow(ctx, query, listingID, count).Scan(&remaining)
	if err == pgx.ErrNoRows {
		return domain.ErrInsufficientStock
	}
	if err != nil {
		return fmt.Errorf("failed to reduce listing: %w", err)
	}

	if remaining == 0 {
		if _, err := t.tx.Exec(ctx, `DELETE FROM listing WHERE listing_id = $1`, listingID); err != nil {
			return fmt.Errorf("failed to delete depleted listing: %w", err)
		}
	}
	return nil
}

// CountBuyerTrades returns the buyer's purchase count since the given time.
func (t *Tx) CountBuyerTrades(ctx context.Context, buyerID string, since time.Time) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM trade_record WHERE buyer_id = $1 AND created_at >= $2`,
		buyerID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count buyer trades: %w", err)
	}
	return count, nil
}

// AppendTradeRecord writes one immutable trade record.
func (t *Tx) AppendTradeRecord(ctx context.Context, record *domain.TradeRecord) error {
	query := `
		INSERT INTO trade_record (buyer_id, seller_id, card_id, count, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING trade_id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		record.BuyerID, record.SellerID, record.CardID, record.Count, record.UnitPrice).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append trade record: %w", err)
	}
	return nil
}
