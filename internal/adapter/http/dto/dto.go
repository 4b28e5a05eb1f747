package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ListItemRequest is the request body for listing an item for sale.
// Price is a decimal string ("1.5"); it is converted to smallest units
// with the configured scale before it reaches the service.
type ListItemRequest struct {
	Asset   string `json:"asset" binding:"required,max=100,safe_id"`
	TokenID uint64 `json:"token_id"`
	Price   string `json:"price" binding:"required"`
}

// BuyItemRequest is the request body for buying a listed item.
type BuyItemRequest struct {
	PaidAmount string `json:"paid_amount" binding:"required"`
}

// UpdateListingRequest is the request body for a price update.
type UpdateListingRequest struct {
	Price string `json:"price" binding:"required"`
}

// ListingResponse is the response body for listing details.
type ListingResponse struct {
	Asset    string `json:"asset"`
	TokenID  uint64 `json:"token_id"`
	Seller   string `json:"seller"`
	Price    string `json:"price"`
	ListedAt string `json:"listed_at"`
}

// ProceedsResponse is the response for a proceeds balance query.
type ProceedsResponse struct {
	Balance string `json:"balance"`
}

// WithdrawResponse is the response for a successful withdrawal.
type WithdrawResponse struct {
	Amount string `json:"amount"`
}

// EventResponse is one entry of the public event feed.
type EventResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Asset   string `json:"asset"`
	TokenID uint64 `json:"token_id"`
	Actor   string `json:"actor"`
	Amount  string `json:"amount"`
	At      string `json:"at"`
}

// EventListResponse wraps the recent-events feed.
type EventListResponse struct {
	Items []EventResponse `json:"items"`
}
