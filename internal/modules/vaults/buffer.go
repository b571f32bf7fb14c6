package vaults

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// BufferExecutor is the cash buffer strategy. Actual movement in and out of
// the buffer happens via the planner's transfers; this executor only
// observes the converged value.
type BufferExecutor struct {
	rail domain.TransferRail
	log  zerolog.Logger
}

// NewBufferExecutor creates the buffer vault executor
func NewBufferExecutor(rail domain.TransferRail, log zerolog.Logger) *BufferExecutor {
	return &BufferExecutor{
		rail: rail,
		log:  log.With().Str("vault", string(domain.VaultBuffer)).Logger(),
	}
}

// ID returns the vault this executor manages.
func (e *BufferExecutor) ID() domain.VaultID {
	return domain.VaultBuffer
}

// Execute compares the buffer balance against the target and reports the
// residual drift. It performs no movement of its own.
func (e *BufferExecutor) Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	address := domain.DeriveVaultAddress(wallet, domain.VaultBuffer)
	balance, err := e.rail.GetBalance(ctx, address)
	if err != nil {
		return failure(domain.VaultBuffer, err)
	}

	drift := target - balance
	if drift > noiseThreshold || drift < -noiseThreshold {
		e.log.Debug().
			Float64("balance", balance).
			Float64("target", target).
			Msg("buffer drift remains after planning; next run will converge it")
	}

	return domain.StrategyExecutionResult{
		VaultID: domain.VaultBuffer,
		Success: true,
	}
}
