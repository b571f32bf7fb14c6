package domain

import (
	"context"
	"time"
)

// TransferRail moves value between the raw wallet and the derived vault
// addresses. The rail enforces its own minimum-transfer-size policy; callers
// must treat below-minimum rejections as a recoverable class, not an error.
type TransferRail interface {
	GetBalance(ctx context.Context, address string) (float64, error)
	GetPublicBalance(ctx context.Context, wallet string) (float64, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	Deposit(ctx context.Context, address string, amount float64) (*TransferResult, error)
	Withdraw(ctx context.Context, address string, amount float64) (*TransferResult, error)
	// IsBelowMinimum reports whether err is the rail's anti-spam rejection.
	IsBelowMinimum(err error) bool
}

// TransferRequest is one rail movement instruction.
type TransferRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// TransferResult is the rail's acknowledgment of a movement.
type TransferResult struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}

// LendingPosition is the user's aggregate position in the lending protocol.
type LendingPosition struct {
	Deposited    float64 `json:"deposited"`
	PendingYield float64 `json:"pending_yield"`
	APY          float64 `json:"apy"`
}

// TxResult is a generic external-protocol transaction acknowledgment.
type TxResult struct {
	Signature string `json:"signature"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// LendingClient is the external lending protocol boundary.
type LendingClient interface {
	Deposit(ctx context.Context, wallet string, amount float64, market string) (*TxResult, error)
	Withdraw(ctx context.Context, wallet string, amount float64, market string) (*TxResult, error)
	GetPosition(ctx context.Context, wallet string) (*LendingPosition, error)
	AccrueYield(ctx context.Context, wallet string) error
	GetCurrentAPY(ctx context.Context, market string) (float64, error)
}

// SwapRequest is one aggregator swap instruction.
type SwapRequest struct {
	InputMint   string  `json:"input_mint"`
	OutputMint  string  `json:"output_mint"`
	Amount      float64 `json:"amount"`
	SlippageBps int     `json:"slippage_bps"`
}

// SwapResult is the aggregator's acknowledgment of an executed swap.
type SwapResult struct {
	Signature string  `json:"signature"`
	InAmount  float64 `json:"in_amount"`
	OutAmount float64 `json:"out_amount"`
}

// SwapClient is the swap aggregator boundary.
type SwapClient interface {
	GetTokenPrice(ctx context.Context, mint string) (float64, error)
	GetTokenPrices(ctx context.Context, mints []string) (map[string]float64, error)
	ExecuteSwap(ctx context.Context, req SwapRequest, wallet string) (*SwapResult, error)
	SwapToUSD1(ctx context.Context, mint string, amount float64, decimals int, wallet string) (*SwapResult, error)
}

// MarketDataSource provides the historical series and aggregate volume the
// signal collector consumes. Both calls must degrade to neutral defaults on
// error at the collector level.
type MarketDataSource interface {
	GetPriceSeries(ctx context.Context, pair string, days int) ([]float64, error)
	GetPairVolume(ctx context.Context, pair string) (float64, error)
}

// AdvisorRequest is the generative allocation advisor's input.
type AdvisorRequest struct {
	Signals MarketSignals `json:"signals"`
	Limits  RiskLimits    `json:"limits"`
	Profile RiskProfile   `json:"profile"`
}

// AdvisorResult is the schema-validated advisor output.
type AdvisorResult struct {
	Allocation Allocation `json:"allocation"`
	Reasoning  string     `json:"reasoning"`
	Confidence float64    `json:"confidence"`
	Mood       string     `json:"mood"`
	Insights   []string   `json:"insights,omitempty"`
}

// AdvisorClient is the generative allocation advisor boundary.
type AdvisorClient interface {
	ProposeAllocation(ctx context.Context, req AdvisorRequest) (*AdvisorResult, error)
}

// RateLimitError is the advisor's backpressure signal. RetryAfter carries the
// provider-supplied delay; the engine suppresses advisor calls until then.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "advisor rate limited, retry after " + e.RetryAfter.String()
}

// MemoSubstrate is the durable, append-only, wallet-scoped store of position
// memos. Truth lives here; the in-memory ledger is a cache over it.
type MemoSubstrate interface {
	Reconstruct(ctx context.Context, wallet string, vault VaultID) ([]PositionMemo, error)
	BuildCommitTransaction(ctx context.Context, wallet string, memos []PositionMemo) (string, error)
}
