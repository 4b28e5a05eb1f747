package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client implements ports.OwnershipOracle against the custody service's
// HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates an oracle client.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

type approvalResponse struct {
	Approved bool `json:"approved"`
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// OwnerOf returns the current owner of (asset, tokenID).
func (c *Client) OwnerOf(ctx context.Context, asset string, tokenID uint64) (uuid.UUID, error) {
	endpoint := fmt.Sprintf("%s/v1/assets/%s/tokens/%d/owner", c.baseURL, url.PathEscape(asset), tokenID)

	var resp ownerResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("owner lookup %s/%d: %w", asset, tokenID, err)
	}

	owner, err := uuid.Parse(resp.Owner)
	if err != nil {
		return uuid.Nil, fmt.Errorf("owner lookup %s/%d: invalid owner %q: %w", asset, tokenID, resp.Owner, err)
	}
	return owner, nil
}

// IsApprovedForTransfer reports whether operator may move (asset, tokenID).
func (c *Client) IsApprovedForTransfer(ctx context.Context, asset string, tokenID uint64, operator string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/assets/%s/tokens/%d/approval?operator=%s",
		c.baseURL, url.PathEscape(asset), tokenID, url.QueryEscape(operator))

	var resp approvalResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return false, fmt.Errorf("approval check %s/%d: %w", asset, tokenID, err)
	}
	return resp.Approved, nil
}

// Transfer instructs the custody service to move (asset, tokenID) from
// one holder to another.
func (c *Client) Transfer(ctx context.Context, asset string, tokenID uint64, from, to uuid.UUID) error {
	endpoint := fmt.Sprintf("%s/v1/assets/%s/tokens/%d/transfer", c.baseURL, url.PathEscape(asset), tokenID)

	body, err := json.Marshal(transferRequest{From: from.String(), To: to.String()})
	if err != nil {
		return fmt.Errorf("transfer %s/%d: %w", asset, tokenID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transfer %s/%d: %w", asset, tokenID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer %s/%d: %w", asset, tokenID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("transfer %s/%d: %s", asset, tokenID, readError(resp))
	}

	c.log.Debug().
		Str("asset", asset).
		Uint64("token_id", tokenID).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("custody transfer completed")
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", readError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) string {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", resp.StatusCode)
}
