package vaults

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// YieldExecutor drives the lending-protocol vault. The protocol is invoked
// against the user's own account: the yield "vault" is an accounting label
// over the user's single lending position, not a separate on-chain owner.
type YieldExecutor struct {
	lending domain.LendingClient
	log     zerolog.Logger
}

// NewYieldExecutor creates the yield vault executor
func NewYieldExecutor(lending domain.LendingClient, log zerolog.Logger) *YieldExecutor {
	return &YieldExecutor{
		lending: lending,
		log:     log.With().Str("vault", string(domain.VaultYield)).Logger(),
	}
}

// ID returns the vault this executor manages.
func (e *YieldExecutor) ID() domain.VaultID {
	return domain.VaultYield
}

// Execute converges the lending position to the target. Pending yield is
// accrued and compounded before the position is valued, so the delta is
// computed against what the user actually holds.
func (e *YieldExecutor) Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	if err := e.lending.AccrueYield(ctx, wallet); err != nil {
		// Accrual is best-effort; valuation still works, it just lags.
		e.log.Warn().Err(err).Msg("yield accrual failed, valuing stale position")
	}

	position, err := e.lending.GetPosition(ctx, wallet)
	if err != nil {
		return failure(domain.VaultYield, fmt.Errorf("failed to read lending position: %w", err))
	}
	current := position.Deposited + position.PendingYield
	delta := target - current

	result := domain.StrategyExecutionResult{
		VaultID: domain.VaultYield,
		Success: true,
	}

	switch {
	case delta > noiseThreshold:
		tx, err := e.lending.Deposit(ctx, wallet, delta, USD1Market)
		if err != nil {
			return failure(domain.VaultYield, fmt.Errorf("lending deposit failed: %w", err))
		}
		result.AmountIn = delta
		result.TxRefs = append(result.TxRefs, tx.Signature)
	case delta < -noiseThreshold:
		amount := -delta
		if amount > current {
			amount = current
		}
		tx, err := e.lending.Withdraw(ctx, wallet, amount, USD1Market)
		if err != nil {
			return failure(domain.VaultYield, fmt.Errorf("lending withdraw failed: %w", err))
		}
		result.AmountOut = amount
		result.TxRefs = append(result.TxRefs, tx.Signature)
	}

	e.log.Debug().
		Float64("current", current).
		Float64("target", target).
		Float64("apy", position.APY).
		Msg("yield vault converged")
	return result
}
