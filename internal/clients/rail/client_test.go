package rail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

func TestGetBalance_ParsesDecimalString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance/addr1", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{Address: "addr1", Amount: "1234.567891"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	balance, err := c.GetBalance(context.Background(), "addr1")
	require.NoError(t, err)
	assert.InDelta(t, 1234.567891, balance, 1e-9)
}

func TestGetBalance_MalformedAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(balanceResponse{Amount: "not-a-number"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	_, err := c.GetBalance(context.Background(), "addr1")
	assert.ErrorContains(t, err, "malformed amount")
}

func TestTransfer_SendsWireDecimal(t *testing.T) {
	var got transferRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transfer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(transferResponse{Success: true, Reference: "ref-1"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	result, err := c.Transfer(context.Background(), domain.TransferRequest{
		From:   "src",
		To:     "dst",
		Amount: 40.1234567, // seventh digit is beyond rail precision
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ref-1", result.Reference)
	assert.Equal(t, "40.123457", got.Amount, "amounts go on the wire as 6dp decimal strings")
}

func TestTransfer_BelowMinimumRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transferResponse{
			Success: false,
			Error:   "amount is below minimum transfer threshold",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	_, err := c.Transfer(context.Background(), domain.TransferRequest{From: "a", To: "b", Amount: 0.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBelowMinimum))
	assert.True(t, c.IsBelowMinimum(err))
}

func TestTransfer_HardRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transferResponse{Success: false, Error: "insufficient balance"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	_, err := c.Transfer(context.Background(), domain.TransferRequest{From: "a", To: "b", Amount: 100})
	require.Error(t, err)
	assert.False(t, c.IsBelowMinimum(err))
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestIsBelowMinimum_TextualClassification(t *testing.T) {
	c := NewClient("http://unused", zerolog.Nop())

	assert.False(t, c.IsBelowMinimum(nil))
	assert.True(t, c.IsBelowMinimum(ErrBelowMinimum))
	assert.True(t, c.IsBelowMinimum(fmt.Errorf("wrapped: %w", ErrBelowMinimum)))
	assert.True(t, c.IsBelowMinimum(errors.New("Below Minimum Transfer: 5.00")))
	assert.False(t, c.IsBelowMinimum(errors.New("connection refused")))
}

func TestWireAmount(t *testing.T) {
	assert.Equal(t, "5", wireAmount(5))
	assert.Equal(t, "0.01", wireAmount(0.01))
	assert.Equal(t, "0.123457", wireAmount(0.123456789))
}

func TestDepositAndWithdraw_RoundTrip(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(transferResponse{Success: true, Reference: "ref"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zerolog.Nop())
	_, err := c.Deposit(context.Background(), "addr", 10)
	require.NoError(t, err)
	_, err = c.Withdraw(context.Background(), "addr", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"/v1/deposit", "/v1/withdraw"}, paths)
}
