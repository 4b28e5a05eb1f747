// Package ledger is the authoritative in-memory store for listings and
// seller proceeds. It enforces data-level invariants only; operation
// policy (who may list, who may buy) lives in the service layer.
package ledger

import (
	"sync"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/pkg/apperror"

	"github.com/google/uuid"
)

// Ledger owns the (asset, token) -> listing mapping and the
// seller -> proceeds mapping. Every mutation is a single atomic step;
// no partial application is observable.
type Ledger struct {
	mu       sync.RWMutex
	listings map[domain.ListingKey]domain.Listing
	proceeds map[uuid.UUID]int64

	keyLocks    *lockMap
	sellerLocks *lockMap
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		listings:    make(map[domain.ListingKey]domain.Listing),
		proceeds:    make(map[uuid.UUID]int64),
		keyLocks:    newLockMap(),
		sellerLocks: newLockMap(),
	}
}

// LockKey acquires the operation-scope lock for one listing key. The
// service holds it across an entire operation, external calls included,
// so concurrent operations on the same item serialize while distinct
// items proceed in parallel.
func (l *Ledger) LockKey(key domain.ListingKey) (unlock func()) {
	return l.keyLocks.Lock(key.String())
}

// LockSeller acquires the operation-scope lock for one seller's
// proceeds account, held across a whole withdrawal.
func (l *Ledger) LockSeller(seller uuid.UUID) (unlock func()) {
	return l.sellerLocks.Lock(seller.String())
}

// GetListing returns the listing for (asset, tokenID), if any.
func (l *Ledger) GetListing(asset string, tokenID uint64) (domain.Listing, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	listing, ok := l.listings[domain.ListingKey{Asset: asset, TokenID: tokenID}]
	return listing, ok
}

// PutListing stores a listing, overwriting unconditionally. The policy
// layer must pre-check "already listed". Price must be positive: absence
// of a listing is the canonical not-listed state, so a zero price can
// never be stored.
func (l *Ledger) PutListing(listing domain.Listing) error {
	if listing.Price <= 0 {
		return apperror.ErrInvalidPrice()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listings[listing.Key()] = listing
	return nil
}

// RemoveListing deletes the listing for (asset, tokenID). Idempotent.
func (l *Ledger) RemoveListing(asset string, tokenID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.listings, domain.ListingKey{Asset: asset, TokenID: tokenID})
}

// GetProceeds returns the seller's accrued balance, zero if unknown.
func (l *Ledger) GetProceeds(seller uuid.UUID) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.proceeds[seller]
}

// Credit adds amount to the seller's proceeds balance. The account is
// created implicitly on first credit.
func (l *Ledger) Credit(seller uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.Validation("credit amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.proceeds[seller] += amount
	return nil
}

// ZeroOut atomically reads and resets the seller's balance, returning
// the amount to be paid out. The account persists at zero.
func (l *Ledger) ZeroOut(seller uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.proceeds[seller]
	if prev == 0 {
		return 0, apperror.ErrNoProceeds()
	}
	l.proceeds[seller] = 0
	return prev, nil
}

// ListingCount returns the number of active listings.
func (l *Ledger) ListingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listings)
}
