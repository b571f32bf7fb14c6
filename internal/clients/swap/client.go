// Package swap provides the client for the swap aggregator used by the
// basket vaults.
package swap

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
	"github.com/tidwall/gjson"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// USD1Mint is the settlement stable token every basket swap routes through.
const USD1Mint = "USD1aBFJzL4vR8mHj5tW2yPqXcE9dKnG7uS3oTmZkV6w"

// Client talks to the swap aggregator. The aggregator's response shapes vary
// by route, so parsing goes through gjson instead of rigid structs; missing
// fields become tagged parse errors rather than silent zeros.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// ParseError marks an aggregator response that did not match the expected
// shape. It is a distinct class so callers can tell provider drift from
// transport failure.
type ParseError struct {
	Field string
	Body  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("swap response missing %q", e.Field)
}

// NewClient creates a new swap aggregator client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 45 * time.Second},
		log:     log.With().Str("client", "swap").Logger(),
	}
}

// GetTokenPrice returns the USD1 price of one token mint.
func (c *Client) GetTokenPrice(ctx context.Context, mint string) (float64, error) {
	body, err := c.get(ctx, "/v1/price?mint="+url.QueryEscape(mint))
	if err != nil {
		return 0, err
	}
	price := gjson.GetBytes(body, "data."+gjsonEscape(mint)+".price")
	if !price.Exists() {
		// Some routes return a flat shape.
		price = gjson.GetBytes(body, "price")
	}
	if !price.Exists() {
		return 0, &ParseError{Field: "price", Body: string(body)}
	}
	return price.Float(), nil
}

// GetTokenPrices returns USD1 prices for a batch of mints. Mints the
// aggregator does not know are absent from the result map.
func (c *Client) GetTokenPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	body, err := c.get(ctx, "/v1/price?mints="+url.QueryEscape(strings.Join(mints, ",")))
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, &ParseError{Field: "data", Body: string(body)}
	}
	prices := make(map[string]float64, len(mints))
	for _, mint := range mints {
		if p := data.Get(gjsonEscape(mint) + ".price"); p.Exists() {
			prices[mint] = p.Float()
		}
	}
	return prices, nil
}

// ExecuteSwap performs one aggregator swap on behalf of the wallet.
func (c *Client) ExecuteSwap(ctx context.Context, req domain.SwapRequest, wallet string) (*domain.SwapResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"input_mint":   req.InputMint,
		"output_mint":  req.OutputMint,
		"amount":       req.Amount,
		"slippage_bps": req.SlippageBps,
		"wallet":       wallet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal swap request: %w", err)
	}
	body, err := c.post(ctx, "/v1/swap", payload)
	if err != nil {
		return nil, err
	}

	sig := gjson.GetBytes(body, "signature")
	if !sig.Exists() {
		return nil, &ParseError{Field: "signature", Body: string(body)}
	}
	return &domain.SwapResult{
		Signature: sig.String(),
		InAmount:  gjson.GetBytes(body, "in_amount").Float(),
		OutAmount: gjson.GetBytes(body, "out_amount").Float(),
	}, nil
}

// SwapToUSD1 sells an exact token amount back into the settlement stable.
func (c *Client) SwapToUSD1(ctx context.Context, mint string, amount float64, decimals int, wallet string) (*domain.SwapResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"input_mint":  mint,
		"output_mint": USD1Mint,
		"amount":      amount,
		"decimals":    decimals,
		"wallet":      wallet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal swap request: %w", err)
	}
	body, err := c.post(ctx, "/v1/swap-to-usd1", payload)
	if err != nil {
		return nil, err
	}

	sig := gjson.GetBytes(body, "signature")
	if !sig.Exists() {
		return nil, &ParseError{Field: "signature", Body: string(body)}
	}
	return &domain.SwapResult{
		Signature: sig.String(),
		InAmount:  amount,
		OutAmount: gjson.GetBytes(body, "out_amount").Float(),
	}, nil
}

// gjsonEscape escapes dots in mint addresses so they survive gjson paths.
func gjsonEscape(key string) string {
	return strings.ReplaceAll(key, ".", "\\.")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swap request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read swap response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("swap returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
