package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("MKT_007", "No proceeds to withdraw", http.StatusBadRequest),
			expected: "[MKT_007] No proceeds to withdraw",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] Internal server error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("EXT_001", "External transfer failed", http.StatusBadGateway, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("MKT_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestMarketplaceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidPrice", ErrInvalidPrice(), "MKT_001", 400},
		{"NotOwner", ErrNotOwner(), "MKT_002", 403},
		{"NotApprovedForMarketplace", ErrNotApprovedForMarketplace(), "MKT_003", 403},
		{"AlreadyListed", ErrAlreadyListed("punks", 7), "MKT_004", 409},
		{"NotListed", ErrNotListed("punks", 7), "MKT_005", 404},
		{"PriceNotMet", ErrPriceNotMet("punks", 7, 100), "MKT_006", 402},
		{"NoProceeds", ErrNoProceeds(), "MKT_007", 400},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrorDetails_CarryKeyAndAmount(t *testing.T) {
	err := ErrPriceNotMet("punks", 42, 250)
	assert.Equal(t, "punks", err.Details["asset"])
	assert.Equal(t, uint64(42), err.Details["token_id"])
	assert.Equal(t, int64(250), err.Details["required"])

	err = ErrAlreadyListed("apes", 1)
	assert.Equal(t, "apes", err.Details["asset"])
	assert.Equal(t, uint64(1), err.Details["token_id"])
}

func TestWithDetail_NilMap(t *testing.T) {
	err := New("MKT_000", "validation", http.StatusBadRequest)
	assert.Nil(t, err.Details)
	err.WithDetail("field", "price")
	assert.Equal(t, "price", err.Details["field"])
}
