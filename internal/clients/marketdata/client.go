// Package marketdata provides the client for historical price series and
// aggregate trading-pair volume.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the market data source. The signal collector owns the
// degrade-to-defaults policy; this client just reports errors.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new market data client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
		log:     log.With().Str("client", "marketdata").Logger(),
	}
}

type seriesResponse struct {
	Pair   string    `json:"pair"`
	Closes []float64 `json:"closes"`
}

type volumeResponse struct {
	Pair      string  `json:"pair"`
	Volume24H float64 `json:"volume_24h"`
}

// GetPriceSeries returns daily closes for a pair, oldest first.
func (c *Client) GetPriceSeries(ctx context.Context, pair string, days int) ([]float64, error) {
	path := fmt.Sprintf("/v1/history?pair=%s&days=%d", url.QueryEscape(pair), days)
	var resp seriesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to get price series: %w", err)
	}
	if len(resp.Closes) == 0 {
		return nil, fmt.Errorf("market data returned empty series for %s", pair)
	}
	return resp.Closes, nil
}

// GetPairVolume returns the aggregate 24h traded volume for a pair.
func (c *Client) GetPairVolume(ctx context.Context, pair string) (float64, error) {
	var resp volumeResponse
	if err := c.get(ctx, "/v1/volume?pair="+url.QueryEscape(pair), &resp); err != nil {
		return 0, fmt.Errorf("failed to get pair volume: %w", err)
	}
	return resp.Volume24H, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("market data returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode market data response: %w", err)
	}
	return nil
}
