// Package memo provides the client for the durable position memo substrate:
// an append-only, wallet-scoped stream of position deltas attached to the
// ledger chain. Memos are msgpack-encoded and base64-wrapped on the wire.
package memo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Client talks to the memo substrate gateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new memo substrate client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "memo").Logger(),
	}
}

type historyResponse struct {
	Wallet string   `json:"wallet"`
	Vault  string   `json:"vault"`
	Memos  []string `json:"memos"` // base64(msgpack) payloads, oldest first
}

type commitRequest struct {
	Wallet string   `json:"wallet"`
	Memos  []string `json:"memos"`
}

type commitResponse struct {
	Transaction string `json:"transaction"` // base64 unsigned transaction
	Error       string `json:"error"`
}

// Reconstruct replays a wallet's durable memo history for one vault.
// Individual undecodable memos are skipped with a warning rather than
// poisoning the whole history; the stream is append-only and old entries
// may predate the current payload shape.
func (c *Client) Reconstruct(ctx context.Context, wallet string, vault domain.VaultID) ([]domain.PositionMemo, error) {
	path := fmt.Sprintf("/v1/memos?wallet=%s&vault=%s", url.QueryEscape(wallet), url.QueryEscape(string(vault)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("memo substrate returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode memo history: %w", err)
	}

	memos := make([]domain.PositionMemo, 0, len(history.Memos))
	for i, encoded := range history.Memos {
		decoded, err := DecodeMemo(encoded)
		if err != nil {
			c.log.Warn().Err(err).Int("index", i).Str("wallet", wallet).Msg("skipping undecodable memo")
			continue
		}
		memos = append(memos, *decoded)
	}
	return memos, nil
}

// BuildCommitTransaction asks the substrate to build an unsigned transaction
// durably appending the given memos. Signing is the wallet holder's job.
func (c *Client) BuildCommitTransaction(ctx context.Context, wallet string, memos []domain.PositionMemo) (string, error) {
	encoded := make([]string, 0, len(memos))
	for _, m := range memos {
		e, err := EncodeMemo(m)
		if err != nil {
			return "", fmt.Errorf("failed to encode memo: %w", err)
		}
		encoded = append(encoded, e)
	}

	payload, err := json.Marshal(commitRequest{Wallet: wallet, Memos: encoded})
	if err != nil {
		return "", fmt.Errorf("failed to marshal commit request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/commit", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("memo request failed: %w", err)
	}
	defer resp.Body.Close()

	var result commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode commit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Transaction == "" {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("memo substrate returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("commit transaction rejected: %s", msg)
	}
	return result.Transaction, nil
}

// EncodeMemo serializes a position memo for the wire.
func EncodeMemo(m domain.PositionMemo) (string, error) {
	raw, err := msgpack.Marshal(m)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeMemo parses a wire-format memo.
func DecodeMemo(encoded string) (*domain.PositionMemo, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	var m domain.PositionMemo
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("invalid msgpack payload: %w", err)
	}
	return &m, nil
}
