package ports

import (
	"context"
	"time"

	"asset-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

// OwnershipOracle is the external authority over asset custody. The
// marketplace queries it for ownership and transfer approval before
// listing, and instructs it to move custody on purchase. It is trusted
// but may fail; failures surface as ExternalTransferFailed.
type OwnershipOracle interface {
	OwnerOf(ctx context.Context, asset string, tokenID uint64) (uuid.UUID, error)
	IsApprovedForTransfer(ctx context.Context, asset string, tokenID uint64, operator string) (bool, error)
	Transfer(ctx context.Context, asset string, tokenID uint64, from, to uuid.UUID) error
}

// PaymentSink is the external mechanism that moves value to a recipient.
// No partial-payment semantics are assumed: Pay either succeeds in full
// or returns an error.
type PaymentSink interface {
	Pay(ctx context.Context, to uuid.UUID, amount int64) error
}

// EventSink receives marketplace events emitted on successful
// operations. Implementations fan out to the journal, websocket
// subscribers and the optional broker; none of them may fail the
// originating operation.
type EventSink interface {
	Emit(ctx context.Context, event domain.Event)
}

// EventPublisher mirrors events to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

// --- Service Ports (Business Logic) ---

// MarketplaceService is the operation surface of the marketplace.
type MarketplaceService interface {
	ListItem(ctx context.Context, req ListItemRequest) (*domain.Listing, error)
	BuyItem(ctx context.Context, req BuyItemRequest) (*domain.Listing, error)
	CancelListing(ctx context.Context, asset string, tokenID uint64, caller uuid.UUID) error
	UpdateListing(ctx context.Context, req UpdateListingRequest) (*domain.Listing, error)
	WithdrawProceeds(ctx context.Context, caller uuid.UUID) (int64, error)
	GetListing(ctx context.Context, asset string, tokenID uint64) (*domain.Listing, error)
	GetProceeds(ctx context.Context, seller uuid.UUID) int64
}

// ListItemRequest holds validated input for listing an item.
type ListItemRequest struct {
	Asset   string
	TokenID uint64
	Price   int64
	Caller  uuid.UUID
}

// BuyItemRequest holds validated input for buying a listed item.
type BuyItemRequest struct {
	Asset      string
	TokenID    uint64
	PaidAmount int64
	Caller     uuid.UUID
}

// UpdateListingRequest holds validated input for a price update.
type UpdateListingRequest struct {
	Asset    string
	TokenID  uint64
	NewPrice int64
	Caller   uuid.UUID
}

// AuthService defines account authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username    string
	Password    string
	DisplayName string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
}
