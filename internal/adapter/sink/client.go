package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client implements ports.PaymentSink against the payout service's HTTP
// API. Pay either succeeds in full or returns an error; the service
// layer decides what a failed payout means for ledger state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a payment sink client.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type payRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Pay transfers amount (smallest units) to the recipient.
func (c *Client) Pay(ctx context.Context, to uuid.UUID, amount int64) error {
	body, err := json.Marshal(payRequest{To: to.String(), Amount: amount})
	if err != nil {
		return fmt.Errorf("payout to %s: %w", to, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payout to %s: %w", to, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payout to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
			return fmt.Errorf("payout to %s: status %d: %s", to, resp.StatusCode, e.Message)
		}
		return fmt.Errorf("payout to %s: unexpected status %d", to, resp.StatusCode)
	}

	c.log.Debug().
		Str("to", to.String()).
		Int64("amount", amount).
		Msg("payout completed")
	return nil
}
