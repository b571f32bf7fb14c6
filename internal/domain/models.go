// Package domain contains the core types shared across the treasury engine.
// The domain layer is pure: no HTTP, no database, no client dependencies.
package domain

import (
	"crypto/sha256"
	"time"

	"github.com/mr-tron/base58"
)

// VaultID identifies one of the five managed vaults.
type VaultID string

const (
	VaultBuffer      VaultID = "buffer"
	VaultYield       VaultID = "yield"
	VaultGrowth      VaultID = "growth"
	VaultSpeculative VaultID = "speculative"
	VaultCommodity   VaultID = "commodity"
)

// VaultOrder is the fixed execution order for strategy executors.
// Later vaults are funded by transfers that must land first, so the order
// is not negotiable.
var VaultOrder = []VaultID{
	VaultBuffer,
	VaultYield,
	VaultGrowth,
	VaultSpeculative,
	VaultCommodity,
}

// IsValidVault reports whether id names a managed vault.
func IsValidVault(id VaultID) bool {
	switch id {
	case VaultBuffer, VaultYield, VaultGrowth, VaultSpeculative, VaultCommodity:
		return true
	}
	return false
}

// RiskProfile is the user's risk appetite, mapped to fixed per-vault ceilings.
type RiskProfile string

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

// IsValidRiskProfile reports whether p is a known profile.
func IsValidRiskProfile(p RiskProfile) bool {
	return p == RiskLow || p == RiskMedium || p == RiskHigh
}

// RiskLimits holds the ceiling percentage per vault for one risk profile.
// Commodity has no ceiling; it absorbs whatever the normalizer leaves over.
type RiskLimits struct {
	BufferMax      float64 `json:"buffer_max"`
	YieldMax       float64 `json:"yield_max"`
	GrowthMax      float64 `json:"growth_max"`
	SpeculativeMax float64 `json:"speculative_max"`
}

// CeilingFor returns the ceiling for a vault. Commodity is uncapped.
func (r RiskLimits) CeilingFor(id VaultID) float64 {
	switch id {
	case VaultBuffer:
		return r.BufferMax
	case VaultYield:
		return r.YieldMax
	case VaultGrowth:
		return r.GrowthMax
	case VaultSpeculative:
		return r.SpeculativeMax
	case VaultCommodity:
		return 100
	}
	return 0
}

// VaultBalance is one vault's derived address and current private balance.
type VaultBalance struct {
	ID      VaultID `json:"id"`
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

// Treasury is the request-scoped snapshot of all balances.
// Immutable after load; reconciliation happens at load time only.
type Treasury struct {
	TotalValue    float64        `json:"total_value"`
	WalletBalance float64        `json:"wallet_balance"`
	PublicBalance float64        `json:"public_balance"`
	Vaults        []VaultBalance `json:"vaults"`
	RiskProfile   RiskProfile    `json:"risk_profile"`
}

// VaultBalanceFor returns the snapshot balance for a vault, 0 if absent.
func (t *Treasury) VaultBalanceFor(id VaultID) float64 {
	for _, v := range t.Vaults {
		if v.ID == id {
			return v.Balance
		}
	}
	return 0
}

// Allocation is a target percentage split across vaults.
// A valid allocation sums to 100 after normalization.
type Allocation struct {
	Buffer      float64 `json:"buffer"`
	Yield       float64 `json:"yield"`
	Growth      float64 `json:"growth"`
	Speculative float64 `json:"speculative"`
	Commodity   float64 `json:"commodity"`
}

// For returns the percentage assigned to a vault.
func (a Allocation) For(id VaultID) float64 {
	switch id {
	case VaultBuffer:
		return a.Buffer
	case VaultYield:
		return a.Yield
	case VaultGrowth:
		return a.Growth
	case VaultSpeculative:
		return a.Speculative
	case VaultCommodity:
		return a.Commodity
	}
	return 0
}

// Set assigns the percentage for a vault.
func (a *Allocation) Set(id VaultID, pct float64) {
	switch id {
	case VaultBuffer:
		a.Buffer = pct
	case VaultYield:
		a.Yield = pct
	case VaultGrowth:
		a.Growth = pct
	case VaultSpeculative:
		a.Speculative = pct
	case VaultCommodity:
		a.Commodity = pct
	}
}

// Sum returns the total of all vault percentages.
func (a Allocation) Sum() float64 {
	return a.Buffer + a.Yield + a.Growth + a.Speculative + a.Commodity
}

// Trend is the coarse market direction.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
)

// Level is a coarse three-way classification used for hype and volatility.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// MarketSignals are the ephemeral indicators feeding the allocation engine.
// They are fetched fresh or defaulted; never the sole basis of a guarantee.
type MarketSignals struct {
	Trend         Trend   `json:"trend"`
	MomentumIndex float64 `json:"momentum_index"` // 0-100, RSI-style
	HypeLevel     Level   `json:"hype_level"`
	Volatility    Level   `json:"volatility"`
}

// NeutralSignals is the safe default when every signal source fails.
func NeutralSignals() MarketSignals {
	return MarketSignals{
		Trend:         TrendBullish,
		MomentumIndex: 50,
		HypeLevel:     LevelMedium,
		Volatility:    LevelMedium,
	}
}

// TransferDirection marks whether a vault is being funded or drained.
type TransferDirection string

const (
	TransferIn  TransferDirection = "in"
	TransferOut TransferDirection = "out"
)

// PlannedTransfer is one executed fund movement between two addresses.
// From and To are never equal; self-transfers are filtered by the planner.
type PlannedTransfer struct {
	VaultID   VaultID           `json:"vault_id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Amount    float64           `json:"amount"`
	Direction TransferDirection `json:"direction"`
	Reference string            `json:"reference,omitempty"`
}

// DeferredTransfer records a planned-but-skipped movement. A deferral is not
// an error: the funds stay in the source vault until the portfolio is large
// enough to clear the anti-spam floor.
type DeferredTransfer struct {
	VaultID VaultID `json:"vault_id"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason"`
}

// TransferError is a per-vault hard failure from the transfer rail.
type TransferError struct {
	VaultID VaultID `json:"vault_id"`
	Message string  `json:"message"`
}

// Position is one open token position owned by a wallet's vault ledger.
type Position struct {
	TokenMint      string    `json:"token_mint"`
	Symbol         string    `json:"symbol"`
	Amount         float64   `json:"amount"`
	EntryPrice     float64   `json:"entry_price"`
	EntryTimestamp time.Time `json:"entry_timestamp"`
}

// MemoOp is the kind of position delta recorded in a durable memo.
type MemoOp string

const (
	MemoDeposit  MemoOp = "deposit"
	MemoWithdraw MemoOp = "withdraw"
)

// PositionMemo describes one position delta, durably committed to the
// append-only memo substrate by the vault that owns the mutation.
type PositionMemo struct {
	Op        MemoOp    `msgpack:"op" json:"op"`
	TokenMint string    `msgpack:"mint" json:"token_mint"`
	Symbol    string    `msgpack:"sym" json:"symbol"`
	Amount    float64   `msgpack:"amt" json:"amount"`
	Price     float64   `msgpack:"px" json:"price"`
	Timestamp time.Time `msgpack:"ts" json:"timestamp"`
}

// StrategyExecutionResult is one vault's outcome for one rebalance run.
// Results are aggregated by the orchestrator, never silently dropped.
type StrategyExecutionResult struct {
	VaultID   VaultID    `json:"vault_id"`
	Success   bool       `json:"success"`
	AmountIn  float64    `json:"amount_in"`
	AmountOut float64    `json:"amount_out"`
	TxRefs    []string   `json:"tx_refs,omitempty"`
	Positions []Position `json:"positions,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// VaultStats is the per-vault slice of the aggregated statistics payload.
type VaultStats struct {
	VaultID       VaultID `json:"vault_id"`
	Balance       float64 `json:"balance"`
	Percentage    float64 `json:"percentage"`
	PnL           float64 `json:"pnl"`
	PositionCount int     `json:"position_count"`
}

// RebalanceReport is the orchestrator's boundary payload for one run.
type RebalanceReport struct {
	RunID      string                    `json:"run_id"`
	Wallet     string                    `json:"wallet"`
	Profile    RiskProfile               `json:"profile"`
	OK         bool                      `json:"ok"`
	Target     Allocation                `json:"target"`
	Reasoning  string                    `json:"reasoning"`
	Signals    MarketSignals             `json:"signals"`
	Executed   []PlannedTransfer         `json:"executed"`
	Deferred   []DeferredTransfer        `json:"deferred"`
	Errors     []TransferError           `json:"errors"`
	Vaults     []StrategyExecutionResult `json:"vaults"`
	Stats      []VaultStats              `json:"stats,omitempty"`
	DurationMS int64                     `json:"duration_ms"`
}

// addressSeedPrefix namespaces vault address derivation so the same wallet
// used by another program family cannot collide with our vault addresses.
const addressSeedPrefix = "shadowfund-vault"

// DeriveVaultAddress derives a vault's private address from the owning wallet
// and the vault id. It is a pure function: the address is never stored, always
// recomputed, so it can never drift from the wallet that owns it.
func DeriveVaultAddress(wallet string, id VaultID) string {
	h := sha256.Sum256([]byte(addressSeedPrefix + "|" + wallet + "|" + string(id)))
	return base58.Encode(h[:])
}
