// Package vaults contains the per-vault strategy executors. Each executor
// converges its vault's externally-held value to a target dollar amount and
// reports a StrategyExecutionResult; it never panics the pipeline.
package vaults

import (
	"context"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// noiseThreshold elides rebalances too small to matter. Deltas at or below
// this are reported as successful no-ops.
const noiseThreshold = 0.01

// USD1Market is the settlement market every strategy trades against.
const USD1Market = "USD1"

// Executor is the common vault strategy contract.
type Executor interface {
	ID() domain.VaultID
	Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult
}

// failure builds a failed result with a captured message.
func failure(id domain.VaultID, err error) domain.StrategyExecutionResult {
	return domain.StrategyExecutionResult{
		VaultID: id,
		Success: false,
		Error:   err.Error(),
	}
}
