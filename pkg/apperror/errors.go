package apperror

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// AppError is a structured error that maps to HTTP responses.
// Details carries machine-readable fields (asset, token_id, amounts) so
// callers never have to parse the message text.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithDetail attaches a structured field to the error and returns it.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ---- Marketplace Business Logic (MKT) ----

func ErrInvalidPrice() *AppError {
	return New("MKT_001", "Price must be above zero", http.StatusBadRequest)
}

func ErrNotOwner() *AppError {
	return New("MKT_002", "Caller does not own this item", http.StatusForbidden)
}

func ErrNotApprovedForMarketplace() *AppError {
	return New("MKT_003", "Marketplace is not approved to transfer this item", http.StatusForbidden)
}

func ErrAlreadyListed(asset string, tokenID uint64) *AppError {
	return New("MKT_004", "Item is already listed", http.StatusConflict).
		WithDetail("asset", asset).
		WithDetail("token_id", tokenID)
}

func ErrNotListed(asset string, tokenID uint64) *AppError {
	return New("MKT_005", "Item is not listed", http.StatusNotFound).
		WithDetail("asset", asset).
		WithDetail("token_id", tokenID)
}

func ErrPriceNotMet(asset string, tokenID uint64, required int64) *AppError {
	return New("MKT_006", "Offered amount is below the listing price", http.StatusPaymentRequired).
		WithDetail("asset", asset).
		WithDetail("token_id", tokenID).
		WithDetail("required", required)
}

func ErrNoProceeds() *AppError {
	return New("MKT_007", "No proceeds to withdraw", http.StatusBadRequest)
}

// ---- External Collaborators (EXT) ----

func ErrExternalTransferFailed(err error) *AppError {
	return Wrap("EXT_001", "External transfer failed", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountNotFound(id uuid.UUID) *AppError {
	return New("AUTH_004", "Account not found", http.StatusNotFound).
		WithDetail("account_id", id.String())
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("MKT_000", message, http.StatusBadRequest)
}
