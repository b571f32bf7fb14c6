// Package lending provides the client for the external lending protocol
// backing the yield vault.
package lending

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Client talks to the lending protocol's HTTP gateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new lending protocol client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "lending").Logger(),
	}
}

type movementRequest struct {
	Wallet string  `json:"wallet"`
	Amount float64 `json:"amount"`
	Market string  `json:"market"`
}

type positionResponse struct {
	Deposited    float64 `json:"deposited"`
	PendingYield float64 `json:"pending_yield"`
	APY          float64 `json:"apy"`
}

type apyResponse struct {
	Market string  `json:"market"`
	APY    float64 `json:"apy"`
}

// Deposit supplies funds into the lending market under the user's account.
func (c *Client) Deposit(ctx context.Context, wallet string, amount float64, market string) (*domain.TxResult, error) {
	return c.movement(ctx, "/v1/deposit", movementRequest{Wallet: wallet, Amount: amount, Market: market})
}

// Withdraw redeems funds from the lending market.
func (c *Client) Withdraw(ctx context.Context, wallet string, amount float64, market string) (*domain.TxResult, error) {
	return c.movement(ctx, "/v1/withdraw", movementRequest{Wallet: wallet, Amount: amount, Market: market})
}

// GetPosition returns the user's aggregate lending position.
func (c *Client) GetPosition(ctx context.Context, wallet string) (*domain.LendingPosition, error) {
	var resp positionResponse
	if err := c.get(ctx, "/v1/position/"+url.PathEscape(wallet), &resp); err != nil {
		return nil, fmt.Errorf("failed to get lending position: %w", err)
	}
	return &domain.LendingPosition{
		Deposited:    resp.Deposited,
		PendingYield: resp.PendingYield,
		APY:          resp.APY,
	}, nil
}

// AccrueYield asks the protocol to accrue and compound pending yield.
func (c *Client) AccrueYield(ctx context.Context, wallet string) error {
	_, err := c.movement(ctx, "/v1/accrue", movementRequest{Wallet: wallet})
	if err != nil {
		return fmt.Errorf("failed to accrue yield: %w", err)
	}
	return nil
}

// GetCurrentAPY returns the market's current supply APY.
func (c *Client) GetCurrentAPY(ctx context.Context, market string) (float64, error) {
	var resp apyResponse
	if err := c.get(ctx, "/v1/apy/"+url.PathEscape(market), &resp); err != nil {
		return 0, fmt.Errorf("failed to get APY: %w", err)
	}
	return resp.APY, nil
}

func (c *Client) movement(ctx context.Context, path string, body movementRequest) (*domain.TxResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lending request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lending response: %w", err)
	}

	var result domain.TxResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode lending response: %w", err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("lending returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("lending movement rejected: %s", msg)
	}

	c.log.Debug().Str("path", path).Str("signature", result.Signature).Msg("lending movement accepted")
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lending request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("lending returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode lending response: %w", err)
	}
	return nil
}
