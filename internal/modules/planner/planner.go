// Package planner diffs current vault balances against the target allocation
// and issues the minimal set of rail transfers to converge them.
package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Outcome is everything the planner did, deferred or failed for one run.
// A deferral is not an error; a per-vault error never aborts the plan.
type Outcome struct {
	Executed []domain.PlannedTransfer
	Deferred []domain.DeferredTransfer
	Errors   []domain.TransferError
}

// Planner plans and executes fund movements between the buffer vault, the
// raw wallet and the strategy vaults. Every unit debited from a source is
// credited to exactly one destination; the planner never destroys or
// duplicates value.
type Planner struct {
	rail        domain.TransferRail
	minTransfer float64
	log         zerolog.Logger
}

// NewPlanner creates a new fund movement planner. minTransfer is the
// mode-dependent anti-spam floor.
func NewPlanner(rail domain.TransferRail, minTransfer float64, log zerolog.Logger) *Planner {
	return &Planner{
		rail:        rail,
		minTransfer: minTransfer,
		log:         log.With().Str("service", "planner").Logger(),
	}
}

// Plan computes and executes the movements for one treasury snapshot.
// Vaults are visited in the fixed execution order; the buffer itself is
// never a movement target, it is the funding source.
func (p *Planner) Plan(ctx context.Context, wallet string, treasury *domain.Treasury, target domain.Allocation) Outcome {
	var out Outcome

	bufferAddr := domain.DeriveVaultAddress(wallet, domain.VaultBuffer)
	bufferAvail := treasury.VaultBalanceFor(domain.VaultBuffer)
	walletAvail := treasury.WalletBalance

	for _, id := range domain.VaultOrder {
		if id == domain.VaultBuffer {
			continue
		}

		targetAmount := target.For(id) / 100 * treasury.TotalValue
		diff := targetAmount - treasury.VaultBalanceFor(id)

		if math.Abs(diff) < p.minTransfer {
			out.Deferred = append(out.Deferred, domain.DeferredTransfer{
				VaultID: id,
				Amount:  math.Abs(diff),
				Reason:  "below minimum transfer size",
			})
			continue
		}

		if diff > 0 {
			p.fund(ctx, id, wallet, bufferAddr, diff, &bufferAvail, &walletAvail, &out)
		} else {
			p.drain(ctx, id, wallet, bufferAddr, -diff, &bufferAvail, &out)
		}
	}

	p.log.Info().
		Int("executed", len(out.Executed)).
		Int("deferred", len(out.Deferred)).
		Int("errors", len(out.Errors)).
		Msg("fund movement plan complete")
	return out
}

// fund moves value into a vault. The buffer vault funds it; when the buffer
// is empty the raw wallet does. The amount is capped at whatever the chosen
// source still holds, so a source can never go negative.
func (p *Planner) fund(ctx context.Context, id domain.VaultID, wallet, bufferAddr string, amount float64, bufferAvail, walletAvail *float64, out *Outcome) {
	var from string
	var avail *float64
	switch {
	case *bufferAvail > 0:
		from, avail = bufferAddr, bufferAvail
	case *walletAvail > 0:
		from, avail = wallet, walletAvail
	default:
		out.Deferred = append(out.Deferred, domain.DeferredTransfer{
			VaultID: id,
			Amount:  amount,
			Reason:  "no funding source available",
		})
		return
	}

	if amount > *avail {
		amount = *avail
	}
	if amount < p.minTransfer {
		out.Deferred = append(out.Deferred, domain.DeferredTransfer{
			VaultID: id,
			Amount:  amount,
			Reason:  "remaining funding below minimum transfer size",
		})
		return
	}

	to := domain.DeriveVaultAddress(wallet, id)
	if from == to {
		return
	}

	result, err := p.rail.Transfer(ctx, domain.TransferRequest{From: from, To: to, Amount: amount})
	if err != nil {
		p.recordFailure(id, amount, err, out)
		return
	}

	*avail -= amount
	out.Executed = append(out.Executed, domain.PlannedTransfer{
		VaultID:   id,
		From:      from,
		To:        to,
		Amount:    amount,
		Direction: domain.TransferIn,
		Reference: result.Reference,
	})
}

// drain moves excess value from a vault back into the buffer.
func (p *Planner) drain(ctx context.Context, id domain.VaultID, wallet, bufferAddr string, amount float64, bufferAvail *float64, out *Outcome) {
	from := domain.DeriveVaultAddress(wallet, id)
	if from == bufferAddr {
		return
	}

	result, err := p.rail.Transfer(ctx, domain.TransferRequest{From: from, To: bufferAddr, Amount: amount})
	if err != nil {
		p.recordFailure(id, amount, err, out)
		return
	}

	*bufferAvail += amount
	out.Executed = append(out.Executed, domain.PlannedTransfer{
		VaultID:   id,
		From:      from,
		To:        bufferAddr,
		Amount:    amount,
		Direction: domain.TransferOut,
		Reference: result.Reference,
	})
}

// recordFailure classifies a rail rejection. The rail's own below-minimum
// policy may be stricter than ours; that class is a deferral, not an error.
func (p *Planner) recordFailure(id domain.VaultID, amount float64, err error, out *Outcome) {
	if p.rail.IsBelowMinimum(err) {
		out.Deferred = append(out.Deferred, domain.DeferredTransfer{
			VaultID: id,
			Amount:  amount,
			Reason:  "rail rejected transfer below its minimum",
		})
		return
	}
	p.log.Error().Err(err).Str("vault", string(id)).Msg("rail transfer failed")
	out.Errors = append(out.Errors, domain.TransferError{
		VaultID: id,
		Message: fmt.Sprintf("transfer failed: %v", err),
	})
}
