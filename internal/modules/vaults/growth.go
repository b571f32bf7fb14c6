package vaults

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/ledger"
)

// GrowthBasket is the diversified-exposure basket: large-cap tokens at
// conservative weights.
var GrowthBasket = []BasketToken{
	{Mint: "So11111111111111111111111111111111111111112", Symbol: "SOL", Weight: 0.50, Decimals: 9},
	{Mint: "7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs", Symbol: "wETH", Weight: 0.30, Decimals: 8},
	{Mint: "3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh", Symbol: "wBTC", Weight: 0.20, Decimals: 8},
}

// growthSlippageBps tolerates routine large-cap spread.
const growthSlippageBps = 50

// GrowthExecutor drives the diversified-exposure vault.
type GrowthExecutor struct {
	strategy basketStrategy
}

// NewGrowthExecutor creates the growth vault executor. simulate skips
// aggregator swaps in test mode while keeping the ledger math live.
func NewGrowthExecutor(swapClient domain.SwapClient, positions *ledger.Ledger, simulate bool, log zerolog.Logger) *GrowthExecutor {
	return &GrowthExecutor{
		strategy: basketStrategy{
			id:          domain.VaultGrowth,
			basket:      GrowthBasket,
			slippageBps: growthSlippageBps,
			simulate:    simulate,
			swapClient:  swapClient,
			positions:   positions,
			log:         log.With().Str("vault", string(domain.VaultGrowth)).Logger(),
		},
	}
}

// ID returns the vault this executor manages.
func (e *GrowthExecutor) ID() domain.VaultID {
	return domain.VaultGrowth
}

// Execute converges the growth basket to the target dollar amount.
func (e *GrowthExecutor) Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	return e.strategy.execute(ctx, wallet, target)
}
