package vaults

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/ledger"
)

// SpeculativeBasket is the meme basket. Equal thirds; nobody can rank these.
var SpeculativeBasket = []BasketToken{
	{Mint: "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", Symbol: "WIF", Weight: 0.34, Decimals: 6},
	{Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "BONK", Weight: 0.33, Decimals: 5},
	{Mint: "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr", Symbol: "POPCAT", Weight: 0.33, Decimals: 9},
}

// speculativeSlippageBps is deliberately loose; meme liquidity is thin.
const speculativeSlippageBps = 300

// SpeculativeExecutor drives the speculative (meme) vault.
type SpeculativeExecutor struct {
	strategy basketStrategy
}

// NewSpeculativeExecutor creates the speculative vault executor.
func NewSpeculativeExecutor(swapClient domain.SwapClient, positions *ledger.Ledger, simulate bool, log zerolog.Logger) *SpeculativeExecutor {
	return &SpeculativeExecutor{
		strategy: basketStrategy{
			id:          domain.VaultSpeculative,
			basket:      SpeculativeBasket,
			slippageBps: speculativeSlippageBps,
			simulate:    simulate,
			swapClient:  swapClient,
			positions:   positions,
			log:         log.With().Str("vault", string(domain.VaultSpeculative)).Logger(),
		},
	}
}

// ID returns the vault this executor manages.
func (e *SpeculativeExecutor) ID() domain.VaultID {
	return domain.VaultSpeculative
}

// Execute converges the meme basket to the target dollar amount.
func (e *SpeculativeExecutor) Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	return e.strategy.execute(ctx, wallet, target)
}
