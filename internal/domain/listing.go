package domain

import "time"

// Visibility controls who can see and buy a market listing.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityFriendsOnly Visibility = "friends"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityFriendsOnly
}

// Listing is a market offer of card units by one seller. There is at most one
// listing per (card, owner) pair; relisting accumulates count and overwrites
// the price. A listing row never has count <= 0; it is deleted at zero.
type Listing struct {
	ID         int64      `json:"listing_id"`
	CardID     int64      `json:"card_id"`
	OwnerID    string     `json:"owner_id"`
	Count      int64      `json:"count"`
	UnitPrice  int64      `json:"unit_price"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}

// ListingFilter narrows a marketplace browse query. Zero values mean
// "no filter"; PriceMax of 0 means unbounded.
type ListingFilter struct {
	CardID       int64
	Package      Package
	NameContains string
	PriceMin     int64
	PriceMax     int64
	MaxLevel     int // filter out cards the viewer has not unlocked
}
