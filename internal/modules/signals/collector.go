// Package signals collects the market indicators feeding the allocation
// engine: trend, momentum, volatility and meme-pair hype.
package signals

import (
	"context"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

const (
	// referencePair anchors trend/momentum/volatility on the majors market.
	referencePair = "SOL/USD1"
	// hypePair is the meme-activity proxy; its volume drives hype level.
	hypePair = "WIF/USD1"

	seriesDays = 30
	rsiPeriod  = 14
	fastSMA    = 7
	slowSMA    = 21

	// Annualized volatility buckets for a crypto majors pair.
	volatilityHigh = 0.90
	volatilityLow  = 0.45

	// 24h volume buckets on the meme pair, in USD1.
	hypeHighVolume = 250_000_000
	hypeLowVolume  = 40_000_000
)

// Collector fetches market signals and degrades each leg independently to a
// neutral default on failure. Collect never returns an error; a dead data
// source must not stall the rebalance pipeline.
type Collector struct {
	source domain.MarketDataSource
	log    zerolog.Logger
}

// NewCollector creates a new market signal collector
func NewCollector(source domain.MarketDataSource, log zerolog.Logger) *Collector {
	return &Collector{
		source: source,
		log:    log.With().Str("service", "signals").Logger(),
	}
}

// Collect fetches fresh signals, substituting neutral defaults per leg.
func (c *Collector) Collect(ctx context.Context) domain.MarketSignals {
	out := domain.NeutralSignals()

	closes, err := c.source.GetPriceSeries(ctx, referencePair, seriesDays)
	if err != nil {
		c.log.Warn().Err(err).Msg("price series unavailable, using neutral trend/momentum/volatility")
	} else {
		if trend, ok := classifyTrend(closes); ok {
			out.Trend = trend
		}
		if momentum, ok := momentumIndex(closes); ok {
			out.MomentumIndex = momentum
		}
		if vol, ok := classifyVolatility(closes); ok {
			out.Volatility = vol
		}
	}

	volume, err := c.source.GetPairVolume(ctx, hypePair)
	if err != nil {
		c.log.Warn().Err(err).Msg("pair volume unavailable, using neutral hype level")
	} else {
		out.HypeLevel = classifyHype(volume)
	}

	c.log.Debug().
		Str("trend", string(out.Trend)).
		Float64("momentum", out.MomentumIndex).
		Str("hype", string(out.HypeLevel)).
		Str("volatility", string(out.Volatility)).
		Msg("market signals collected")
	return out
}

// classifyTrend compares a fast and a slow moving average over the closes.
func classifyTrend(closes []float64) (domain.Trend, bool) {
	if len(closes) < slowSMA {
		return "", false
	}
	fast := talib.Sma(closes, fastSMA)
	slow := talib.Sma(closes, slowSMA)
	last := len(closes) - 1
	if fast[last] >= slow[last] {
		return domain.TrendBullish, true
	}
	return domain.TrendBearish, true
}

// momentumIndex is the latest RSI reading on the reference pair.
func momentumIndex(closes []float64) (float64, bool) {
	if len(closes) <= rsiPeriod {
		return 0, false
	}
	rsi := talib.Rsi(closes, rsiPeriod)
	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}

// classifyVolatility buckets the annualized stddev of daily log returns.
func classifyVolatility(closes []float64) (domain.Level, bool) {
	if len(closes) < 3 {
		return "", false
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return "", false
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	annualized := stat.StdDev(returns, nil) * math.Sqrt(365)
	switch {
	case annualized >= volatilityHigh:
		return domain.LevelHigh, true
	case annualized <= volatilityLow:
		return domain.LevelLow, true
	default:
		return domain.LevelMedium, true
	}
}

// classifyHype buckets 24h meme-pair volume.
func classifyHype(volume float64) domain.Level {
	switch {
	case volume >= hypeHighVolume:
		return domain.LevelHigh
	case volume <= hypeLowVolume:
		return domain.LevelLow
	default:
		return domain.LevelMedium
	}
}
