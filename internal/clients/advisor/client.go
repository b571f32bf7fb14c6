// Package advisor provides the client for the generative allocation advisor.
// The advisor returns free-form model output; everything that reaches the
// allocation engine has been markdown-stripped and schema-validated here.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// defaultRetryAfter is used when the provider rate-limits without telling us
// how long to back off.
const defaultRetryAfter = 60 * time.Second

// allocationSchema validates the advisor's allocation payload before any
// number from it is trusted. Percentages outside [0,100] are provider bugs,
// not inputs.
const allocationSchema = `{
  "type": "object",
  "required": ["allocation", "reasoning", "confidence"],
  "properties": {
    "allocation": {
      "type": "object",
      "required": ["buffer", "yield", "growth", "speculative"],
      "properties": {
        "buffer":      {"type": "number", "minimum": 0, "maximum": 100},
        "yield":       {"type": "number", "minimum": 0, "maximum": 100},
        "growth":      {"type": "number", "minimum": 0, "maximum": 100},
        "speculative": {"type": "number", "minimum": 0, "maximum": 100},
        "commodity":   {"type": "number", "minimum": 0, "maximum": 100}
      }
    },
    "reasoning":  {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100},
    "mood":       {"type": "string"},
    "insights":   {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledSchema = jsonschema.MustCompileString("advisor.json", allocationSchema)

// Client talks to the generative allocation advisor.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new advisor client
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log.With().Str("client", "advisor").Logger(),
	}
}

// ProposeAllocation asks the advisor for a target allocation. A provider
// rate limit surfaces as *domain.RateLimitError carrying the retry delay.
func (c *Client) ProposeAllocation(ctx context.Context, req domain.AdvisorRequest) (*domain.AdvisorResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal advisor request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/allocations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("advisor request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisor response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.RateLimitError{RetryAfter: retryAfterFrom(resp, body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The provider wraps the model output; the content itself is model text.
	content := gjson.GetBytes(body, "content")
	if !content.Exists() {
		return nil, fmt.Errorf("advisor response missing content field")
	}
	return ParseModelOutput(content.String())
}

// ParseModelOutput strips markdown fencing from raw model text, validates the
// embedded JSON against the allocation schema, and decodes it.
func ParseModelOutput(raw string) (*domain.AdvisorResult, error) {
	cleaned := StripMarkdownFences(raw)

	var loose interface{}
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return nil, fmt.Errorf("advisor output is not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(loose); err != nil {
		return nil, fmt.Errorf("advisor output failed schema validation: %w", err)
	}

	var result domain.AdvisorResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to decode advisor output: %w", err)
	}
	return &result, nil
}

// StripMarkdownFences removes a surrounding ```json ... ``` fence if the
// model wrapped its answer in one.
func StripMarkdownFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// retryAfterFrom extracts the provider's backoff hint. Header takes
// precedence; some providers put retry_after_seconds in the body instead.
func retryAfterFrom(resp *http.Response, body []byte) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if secs := gjson.GetBytes(body, "retry_after_seconds"); secs.Exists() && secs.Float() > 0 {
		return time.Duration(secs.Float() * float64(time.Second))
	}
	return defaultRetryAfter
}
