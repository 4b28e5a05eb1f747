package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered marketplace participant. The account ID
// is the seller/buyer identity used by listings and proceeds balances.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}
