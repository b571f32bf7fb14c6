// Package treasury loads the request-scoped snapshot of all balances.
package treasury

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Loader aggregates the wallet balance, the public balance and every vault
// balance into one consistent Treasury snapshot. It is read-only and fails
// soft: a failed balance query contributes a zero, never an error.
type Loader struct {
	rail domain.TransferRail
	log  zerolog.Logger
}

// NewLoader creates a new treasury state loader
func NewLoader(rail domain.TransferRail, log zerolog.Logger) *Loader {
	return &Loader{
		rail: rail,
		log:  log.With().Str("service", "treasury").Logger(),
	}
}

// Load builds the snapshot for one wallet. Combining is a pure sum over
// whatever the queries returned; there is no partial-result suppression.
func (l *Loader) Load(ctx context.Context, wallet string, profile domain.RiskProfile) *domain.Treasury {
	walletBalance, err := l.rail.GetBalance(ctx, wallet)
	if err != nil {
		l.log.Warn().Err(err).Str("wallet", wallet).Msg("wallet balance query failed, using zero")
		walletBalance = 0
	}

	publicBalance, err := l.rail.GetPublicBalance(ctx, wallet)
	if err != nil {
		l.log.Warn().Err(err).Str("wallet", wallet).Msg("public balance query failed, using zero")
		publicBalance = 0
	}

	vaults := make([]domain.VaultBalance, 0, len(domain.VaultOrder))
	total := walletBalance
	for _, id := range domain.VaultOrder {
		address := domain.DeriveVaultAddress(wallet, id)
		balance, err := l.rail.GetBalance(ctx, address)
		if err != nil {
			l.log.Warn().Err(err).Str("vault", string(id)).Msg("vault balance query failed, using zero")
			balance = 0
		}
		vaults = append(vaults, domain.VaultBalance{ID: id, Address: address, Balance: balance})
		total += balance
	}

	l.log.Debug().
		Float64("total", total).
		Float64("wallet", walletBalance).
		Float64("public", publicBalance).
		Msg("treasury snapshot loaded")

	return &domain.Treasury{
		TotalValue:    total,
		WalletBalance: walletBalance,
		PublicBalance: publicBalance,
		Vaults:        vaults,
		RiskProfile:   profile,
	}
}
