package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

const validModelOutput = `{
  "allocation": {"buffer": 35, "yield": 25, "growth": 22, "speculative": 10, "commodity": 8},
  "reasoning": "calm uptrend, modest risk budget",
  "confidence": 82,
  "mood": "risk-on",
  "insights": ["majors trending up"]
}`

func TestParseModelOutput_PlainJSON(t *testing.T) {
	result, err := ParseModelOutput(validModelOutput)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, result.Allocation.Buffer, 1e-9)
	assert.InDelta(t, 8.0, result.Allocation.Commodity, 1e-9)
	assert.Equal(t, "risk-on", result.Mood)
	assert.InDelta(t, 82.0, result.Confidence, 1e-9)
	assert.Len(t, result.Insights, 1)
}

func TestParseModelOutput_FencedJSON(t *testing.T) {
	result, err := ParseModelOutput("```json\n" + validModelOutput + "\n```")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, result.Allocation.Yield, 1e-9)

	result, err = ParseModelOutput("```\n" + validModelOutput + "\n```")
	require.NoError(t, err)
	assert.InDelta(t, 22.0, result.Allocation.Growth, 1e-9)
}

func TestParseModelOutput_RejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "the market feels bullish today"},
		{"missing reasoning", `{"allocation": {"buffer": 40, "yield": 25, "growth": 20, "speculative": 10}, "confidence": 80}`},
		{"missing allocation field", `{"allocation": {"buffer": 40}, "reasoning": "x", "confidence": 80}`},
		{"percentage out of range", `{"allocation": {"buffer": 140, "yield": 25, "growth": 20, "speculative": 10}, "reasoning": "x", "confidence": 80}`},
		{"negative percentage", `{"allocation": {"buffer": -5, "yield": 25, "growth": 20, "speculative": 10}, "reasoning": "x", "confidence": 80}`},
		{"string percentage", `{"allocation": {"buffer": "40", "yield": 25, "growth": 20, "speculative": 10}, "reasoning": "x", "confidence": 80}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModelOutput(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestStripMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripMarkdownFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripMarkdownFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripMarkdownFences(`  {"a":1}  `))
	assert.Equal(t, "plain text", StripMarkdownFences("plain text"))
}

func TestProposeAllocation_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/allocations", r.URL.Path)

		var req domain.AdvisorRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.RiskMedium, req.Profile)

		json.NewEncoder(w).Encode(map[string]string{
			"content": "```json\n" + validModelOutput + "\n```",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-key", zerolog.Nop())
	result, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{
		Profile: domain.RiskMedium,
		Signals: domain.NeutralSignals(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.InDelta(t, 35.0, result.Allocation.Buffer, 1e-9)
}

func TestProposeAllocation_RateLimitFromHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", zerolog.Nop())
	_, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{})

	var rateLimit *domain.RateLimitError
	require.True(t, errors.As(err, &rateLimit))
	assert.Equal(t, 30*time.Second, rateLimit.RetryAfter)
}

func TestProposeAllocation_RateLimitFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited", "retry_after_seconds": 12}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", zerolog.Nop())
	_, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{})

	var rateLimit *domain.RateLimitError
	require.True(t, errors.As(err, &rateLimit))
	assert.Equal(t, 12*time.Second, rateLimit.RetryAfter)
}

func TestProposeAllocation_RateLimitDefaultDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", zerolog.Nop())
	_, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{})

	var rateLimit *domain.RateLimitError
	require.True(t, errors.As(err, &rateLimit))
	assert.Equal(t, defaultRetryAfter, rateLimit.RetryAfter)
}

func TestProposeAllocation_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", zerolog.Nop())
	_, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	var rateLimit *domain.RateLimitError
	assert.False(t, errors.As(err, &rateLimit))
}

func TestProposeAllocation_MissingContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"something_else": true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", zerolog.Nop())
	_, err := c.ProposeAllocation(context.Background(), domain.AdvisorRequest{})
	assert.ErrorContains(t, err, "missing content")
}
