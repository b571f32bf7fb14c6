package vaults

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/ledger"
)

// CommodityBasket holds tokenized gold. Single constituent; the vault's
// point is the asset class, not diversification within it.
var CommodityBasket = []BasketToken{
	{Mint: "9mWRABuz2x6koTPCWiCPM49WUbcrNqGTHBV9T9k7y1o7", Symbol: "wPAXG", Weight: 1.0, Decimals: 8},
}

const commoditySlippageBps = 100

// CommodityExecutor drives the commodity-backed vault. On top of the shared
// basket machinery it durably commits every position delta to the memo
// substrate, so the book survives process restarts.
type CommodityExecutor struct {
	strategy  basketStrategy
	substrate domain.MemoSubstrate
	positions *ledger.Ledger
	log       zerolog.Logger
}

// NewCommodityExecutor creates the commodity vault executor.
func NewCommodityExecutor(swapClient domain.SwapClient, substrate domain.MemoSubstrate, positions *ledger.Ledger, simulate bool, log zerolog.Logger) *CommodityExecutor {
	childLog := log.With().Str("vault", string(domain.VaultCommodity)).Logger()
	return &CommodityExecutor{
		strategy: basketStrategy{
			id:          domain.VaultCommodity,
			basket:      CommodityBasket,
			slippageBps: commoditySlippageBps,
			simulate:    simulate,
			durable:     true,
			swapClient:  swapClient,
			positions:   positions,
			log:         childLog,
		},
		substrate: substrate,
		positions: positions,
		log:       childLog,
	}
}

// ID returns the vault this executor manages.
func (e *CommodityExecutor) ID() domain.VaultID {
	return domain.VaultCommodity
}

// Execute converges the commodity position and commits the resulting memos.
// A failed commit fails the run for this vault: without the durable record
// the book could not be reconstructed after a restart.
func (e *CommodityExecutor) Execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	result := e.strategy.execute(ctx, wallet, target)

	pending := e.positions.DrainPending(wallet, domain.VaultCommodity)
	if len(pending) == 0 {
		return result
	}

	tx, err := e.substrate.BuildCommitTransaction(ctx, wallet, pending)
	if err != nil {
		e.log.Error().Err(err).Int("memos", len(pending)).Msg("failed to build memo commit transaction")
		result.Success = false
		result.Error = fmt.Sprintf("position memo commit failed: %v", err)
		return result
	}
	result.TxRefs = append(result.TxRefs, tx)
	return result
}
