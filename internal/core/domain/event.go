package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of marketplace event.
type EventType string

const (
	EventItemListed   EventType = "ITEM_LISTED"
	EventItemBought   EventType = "ITEM_BOUGHT"
	EventItemCanceled EventType = "ITEM_CANCELED"
)

// Event is one entry of the append-only observable marketplace log.
// Events are emitted on successful operations only; they are an audit
// surface, not required for ledger correctness.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Type    EventType `json:"type"`
	Asset   string    `json:"asset"`
	TokenID uint64    `json:"token_id"`
	// Actor is the seller for ITEM_LISTED/ITEM_CANCELED and the buyer
	// for ITEM_BOUGHT.
	Actor uuid.UUID `json:"actor"`
	// Amount is the listing price for ITEM_LISTED, the paid amount for
	// ITEM_BOUGHT, and zero for ITEM_CANCELED.
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

// NewEvent builds an event with a fresh ID and the current UTC time.
func NewEvent(typ EventType, asset string, tokenID uint64, actor uuid.UUID, amount int64) Event {
	return Event{
		ID:      uuid.New(),
		Type:    typ,
		Asset:   asset,
		TokenID: tokenID,
		Actor:   actor,
		Amount:  amount,
		At:      time.Now().UTC(),
	}
}
