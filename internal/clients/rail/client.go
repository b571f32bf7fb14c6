// Package rail provides the client for the private transfer rail that moves
// value between the raw wallet and the derived vault addresses.
package rail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// belowMinimumMarker is the substring the rail uses in its anti-spam
// rejections. The planner reclassifies matching failures as deferrals.
const belowMinimumMarker = "below minimum transfer"

// ErrBelowMinimum is returned when the rail rejects a movement for being
// under its anti-spam floor. This is a recoverable class, not a hard failure.
var ErrBelowMinimum = errors.New(belowMinimumMarker)

// Client talks to the transfer rail over HTTP. Amounts are serialized as
// exact decimal strings; the rail does not accept binary floats on the wire.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new transfer rail client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "rail").Logger(),
	}
}

type balanceResponse struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type movementRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type transferResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	Error     string `json:"error"`
}

// GetBalance returns the private balance held at an address.
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/v1/balance/"+url.PathEscape(address), &resp); err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	amount, err := decimal.NewFromString(resp.Amount)
	if err != nil {
		return 0, fmt.Errorf("rail returned malformed amount %q: %w", resp.Amount, err)
	}
	return amount.InexactFloat64(), nil
}

// GetPublicBalance returns the wallet's public (undeposited) balance.
func (c *Client) GetPublicBalance(ctx context.Context, wallet string) (float64, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/v1/public-balance/"+url.PathEscape(wallet), &resp); err != nil {
		return 0, fmt.Errorf("failed to get public balance: %w", err)
	}
	amount, err := decimal.NewFromString(resp.Amount)
	if err != nil {
		return 0, fmt.Errorf("rail returned malformed amount %q: %w", resp.Amount, err)
	}
	return amount.InexactFloat64(), nil
}

// Transfer moves value between two private addresses.
func (c *Client) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	body := transferRequest{
		From:   req.From,
		To:     req.To,
		Amount: wireAmount(req.Amount),
	}
	resp, err := c.post(ctx, "/v1/transfer", body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Deposit moves public funds into a private address.
func (c *Client) Deposit(ctx context.Context, address string, amount float64) (*domain.TransferResult, error) {
	return c.post(ctx, "/v1/deposit", movementRequest{Address: address, Amount: wireAmount(amount)})
}

// Withdraw moves private funds back out to the public balance.
func (c *Client) Withdraw(ctx context.Context, address string, amount float64) (*domain.TransferResult, error) {
	return c.post(ctx, "/v1/withdraw", movementRequest{Address: address, Amount: wireAmount(amount)})
}

// IsBelowMinimum reports whether err is the rail's anti-spam rejection.
// The rail encodes the class only in its error text, so matching is textual.
func (c *Client) IsBelowMinimum(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBelowMinimum) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), belowMinimumMarker)
}

// wireAmount renders an amount as the exact decimal string the rail expects.
// Six fractional digits matches the rail's USD1 precision.
func wireAmount(amount float64) string {
	return decimal.NewFromFloat(amount).Round(6).String()
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rail request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("rail returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode rail response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*domain.TransferResult, error) {
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
		return nil, fmt.Errorf("rail request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rail response: %w", err)
	}

	var parsed transferResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rail response: %w", err)
	}

	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("rail returned status %d", resp.StatusCode)
		}
		if strings.Contains(strings.ToLower(msg), belowMinimumMarker) {
			return nil, fmt.Errorf("%s: %w", msg, ErrBelowMinimum)
		}
		return nil, fmt.Errorf("rail movement rejected: %s", msg)
	}

	c.log.Debug().Str("path", path).Str("reference", parsed.Reference).Msg("rail movement accepted")
	return &domain.TransferResult{
		Success:   true,
		Reference: parsed.Reference,
	}, nil
}
