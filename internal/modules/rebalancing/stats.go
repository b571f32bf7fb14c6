package rebalancing

import (
	"context"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// VaultStats reads per-vault balance, share, P&L proxy and position count.
// The five balance reads run sequentially on purpose: the rail's read path
// is rate limited and a burst of parallel reads trips it. Latency is traded
// for reliability here.
func (s *Service) VaultStats(ctx context.Context, wallet string) ([]domain.VaultStats, error) {
	if wallet == "" {
		return nil, errEmptyWallet
	}

	balances := make(map[domain.VaultID]float64, len(domain.VaultOrder))
	total := 0.0
	for _, id := range domain.VaultOrder {
		address := domain.DeriveVaultAddress(wallet, id)
		balance, err := s.rail.GetBalance(ctx, address)
		if err != nil {
			s.log.Warn().Err(err).Str("vault", string(id)).Msg("stats balance read failed, using zero")
			balance = 0
		}
		balances[id] = balance
		total += balance
	}

	stats := make([]domain.VaultStats, 0, len(domain.VaultOrder))
	for _, id := range domain.VaultOrder {
		entry := domain.VaultStats{
			VaultID: id,
			Balance: balances[id],
		}
		if total > 0 {
			entry.Percentage = balances[id] / total * 100
		}

		// Position-backed vaults report open position count and unrealized
		// P&L against entry prices; cash-only vaults have neither.
		switch id {
		case domain.VaultGrowth, domain.VaultSpeculative, domain.VaultCommodity:
			s.ledger.LoadOnce(ctx, wallet, id)
			positions := s.ledger.Positions(wallet, id)
			entry.PositionCount = len(positions)
			entry.PnL = s.unrealizedPnL(ctx, positions)
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

// unrealizedPnL prices open positions and compares against their weighted
// entry cost. A dead price feed degrades to zero P&L rather than an error.
func (s *Service) unrealizedPnL(ctx context.Context, positions []domain.Position) float64 {
	if len(positions) == 0 || s.swap == nil {
		return 0
	}
	mints := make([]string, 0, len(positions))
	for _, p := range positions {
		mints = append(mints, p.TokenMint)
	}
	prices, err := s.swap.GetTokenPrices(ctx, mints)
	if err != nil {
		s.log.Warn().Err(err).Msg("price lookup for P&L failed, reporting zero")
		return 0
	}
	pnl := 0.0
	for _, p := range positions {
		if price, ok := prices[p.TokenMint]; ok {
			pnl += p.Amount * (price - p.EntryPrice)
		}
	}
	return pnl
}
