package ledger

import (
	"github.com/google/uuid"

	"asset-marketplace/internal/core/domain"
)

// State is a point-in-time capture of the ledger, used for snapshot
// persistence at shutdown and restore at startup.
type State struct {
	Listings []domain.Listing `json:"listings"`
	Proceeds []ProceedsEntry  `json:"proceeds"`
}

// ProceedsEntry is one seller's balance in a snapshot. Zero balances are
// included: the account lifecycle says they persist.
type ProceedsEntry struct {
	Seller  uuid.UUID `json:"seller"`
	Balance int64     `json:"balance"`
}

// Snapshot captures the full ledger state under the read lock.
func (l *Ledger) Snapshot() *State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := &State{
		Listings: make([]domain.Listing, 0, len(l.listings)),
		Proceeds: make([]ProceedsEntry, 0, len(l.proceeds)),
	}
	for _, listing := range l.listings {
		st.Listings = append(st.Listings, listing)
	}
	for seller, balance := range l.proceeds {
		st.Proceeds = append(st.Proceeds, ProceedsEntry{Seller: seller, Balance: balance})
	}
	return st
}

// Restore replaces the ledger contents with a previously captured state.
// Listings with non-positive prices and negative balances are skipped:
// they violate ledger invariants and cannot have come from a valid
// snapshot.
func (l *Ledger) Restore(st *State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.listings = make(map[domain.ListingKey]domain.Listing, len(st.Listings))
	l.proceeds = make(map[uuid.UUID]int64, len(st.Proceeds))

	for _, listing := range st.Listings {
		if listing.Price <= 0 {
			continue
		}
		l.listings[listing.Key()] = listing
	}
	for _, entry := range st.Proceeds {
		if entry.Balance < 0 {
			continue
		}
		l.proceeds[entry.Seller] = entry.Balance
	}
}
