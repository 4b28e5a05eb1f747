package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListingKey is the composite key identifying one sellable item:
// an asset collection identifier plus the item's token ID.
type ListingKey struct {
	Asset   string `json:"asset"`
	TokenID uint64 `json:"token_id"`
}

// String renders the key in asset/token form, used for log fields and
// lock scoping.
func (k ListingKey) String() string {
	return fmt.Sprintf("%s/%d", k.Asset, k.TokenID)
}

// Listing represents one item offered for sale at a fixed price.
// A listing exists iff the item is currently for sale; Price is always
// positive for an existing listing.
type Listing struct {
	Asset    string    `json:"asset"`
	TokenID  uint64    `json:"token_id"`
	Seller   uuid.UUID `json:"seller"`
	Price    int64     `json:"price"` // In smallest currency unit
	ListedAt time.Time `json:"listed_at"`
}

// Key returns the composite key for this listing.
func (l *Listing) Key() ListingKey {
	return ListingKey{Asset: l.Asset, TokenID: l.TokenID}
}
