package vaults

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/swap"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/ledger"
)

// BasketToken is one constituent of a basket vault.
type BasketToken struct {
	Mint     string
	Symbol   string
	Weight   float64 // fraction of the basket, weights sum to 1
	Decimals int
}

// basketStrategy is the shared deposit/withdraw machinery for the vaults
// that hold a fixed token basket (growth, speculative, commodity).
// Deposits split the delta across the basket by weight and buy each token;
// withdrawals sell a proportional slice of every held position.
type basketStrategy struct {
	id          domain.VaultID
	basket      []BasketToken
	slippageBps int
	simulate    bool // test mode: ledger mutations without aggregator swaps
	durable     bool // owner commits pending memos after execution
	swapClient  domain.SwapClient
	positions   *ledger.Ledger
	log         zerolog.Logger
}

func (s *basketStrategy) mints() []string {
	out := make([]string, 0, len(s.basket))
	for _, t := range s.basket {
		out = append(out, t.Mint)
	}
	return out
}

// execute converges the basket's priced value to the target.
func (s *basketStrategy) execute(ctx context.Context, wallet string, target float64) domain.StrategyExecutionResult {
	s.positions.LoadOnce(ctx, wallet, s.id)

	prices, err := s.swapClient.GetTokenPrices(ctx, s.mints())
	if err != nil {
		return failure(s.id, fmt.Errorf("failed to price basket: %w", err))
	}

	current := s.positions.Value(wallet, s.id, prices)
	delta := target - current

	result := domain.StrategyExecutionResult{VaultID: s.id, Success: true}

	switch {
	case delta > noiseThreshold:
		err = s.deposit(ctx, wallet, delta, prices, &result)
	case delta < -noiseThreshold:
		err = s.withdraw(ctx, wallet, -delta, current, prices, &result)
	}
	if err != nil {
		result.Success = false
		result.Error = err.Error()
	}

	if !s.durable {
		// Non-durable baskets reconstruct from nothing on restart; dropping
		// the pending memos keeps the queue from growing without bound.
		s.positions.DrainPending(wallet, s.id)
	}

	result.Positions = s.positions.Positions(wallet, s.id)
	s.log.Debug().
		Float64("current", current).
		Float64("target", target).
		Bool("success", result.Success).
		Msg("basket vault executed")
	return result
}

// deposit buys into every basket token, splitting the dollar delta by the
// basket weights at current prices.
func (s *basketStrategy) deposit(ctx context.Context, wallet string, delta float64, prices map[string]float64, result *domain.StrategyExecutionResult) error {
	for _, token := range s.basket {
		slice := delta * token.Weight
		price, ok := prices[token.Mint]
		if !ok || price <= 0 {
			return fmt.Errorf("no price for %s", token.Symbol)
		}
		tokenAmount := slice / price

		ref := "simulated"
		if !s.simulate {
			swapResult, err := s.swapClient.ExecuteSwap(ctx, domain.SwapRequest{
				InputMint:   swap.USD1Mint,
				OutputMint:  token.Mint,
				Amount:      slice,
				SlippageBps: s.slippageBps,
			}, wallet)
			if err != nil {
				return fmt.Errorf("swap into %s failed: %w", token.Symbol, err)
			}
			ref = swapResult.Signature
			if swapResult.OutAmount > 0 {
				tokenAmount = swapResult.OutAmount
			}
		}

		s.positions.ApplyDeposit(wallet, s.id, token.Mint, token.Symbol, tokenAmount, price)
		result.AmountIn += slice
		result.TxRefs = append(result.TxRefs, ref)
	}
	return nil
}

// withdraw sells the same fraction of every held position so the basket's
// composition survives the drawdown.
func (s *basketStrategy) withdraw(ctx context.Context, wallet string, amount, current float64, prices map[string]float64, result *domain.StrategyExecutionResult) error {
	if current <= 0 {
		return nil
	}
	fraction := math.Min(1, amount/current)

	for _, position := range s.positions.Positions(wallet, s.id) {
		sellAmount := position.Amount * fraction
		if sellAmount <= domain.DustEpsilon {
			continue
		}
		price := prices[position.TokenMint]

		ref := "simulated"
		proceeds := sellAmount * price
		if !s.simulate {
			decimals := s.decimalsFor(position.TokenMint)
			swapResult, err := s.swapClient.SwapToUSD1(ctx, position.TokenMint, sellAmount, decimals, wallet)
			if err != nil {
				return fmt.Errorf("swap out of %s failed: %w", position.Symbol, err)
			}
			ref = swapResult.Signature
			if swapResult.OutAmount > 0 {
				proceeds = swapResult.OutAmount
			}
		}

		s.positions.ApplyWithdraw(wallet, s.id, position.TokenMint, sellAmount)
		result.AmountOut += proceeds
		result.TxRefs = append(result.TxRefs, ref)
	}
	return nil
}

func (s *basketStrategy) decimalsFor(mint string) int {
	for _, t := range s.basket {
		if t.Mint == mint {
			return t.Decimals
		}
	}
	return 9
}
