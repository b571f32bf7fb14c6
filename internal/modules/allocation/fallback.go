package allocation

import (
	"fmt"
	"strings"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Mood is the coarse market regime driving the rule table.
type Mood string

const (
	MoodRiskOn  Mood = "risk-on"
	MoodRiskOff Mood = "risk-off"
	MoodNeutral Mood = "neutral"
)

// oversoldThreshold is the RSI level below which the rules lean into growth.
const oversoldThreshold = 30

// baseline is the starting allocation before any signal adjustment.
func baseline() domain.Allocation {
	return domain.Allocation{
		Buffer:      40,
		Yield:       25,
		Growth:      20,
		Speculative: 10,
		Commodity:   5,
	}
}

// ClassifyMood derives the macro regime from trend and volatility.
// High volatility or a bearish trend always reads risk-off.
func ClassifyMood(sig domain.MarketSignals) Mood {
	if sig.Trend == domain.TrendBearish || sig.Volatility == domain.LevelHigh {
		return MoodRiskOff
	}
	if sig.Trend == domain.TrendBullish && sig.Volatility == domain.LevelLow {
		return MoodRiskOn
	}
	return MoodNeutral
}

// RuleBased is the deterministic fallback: baseline plus additive
// adjustments keyed by mood and signal thresholds, then clamped to the
// profile's ceilings and renormalized to 100. It works for any input,
// including all-zero signals, and its output is never cached so the advisor
// path is retried promptly on the next call.
func RuleBased(sig domain.MarketSignals, limits domain.RiskLimits) (domain.Allocation, string) {
	a := baseline()
	mood := ClassifyMood(sig)
	notes := []string{fmt.Sprintf("mood=%s", mood)}

	switch mood {
	case MoodRiskOn:
		a.Buffer -= 10
		a.Growth += 5
		a.Speculative += 5
		notes = append(notes, "shifting buffer into growth and speculative")
	case MoodRiskOff:
		a.Buffer += 15
		a.Yield += 5
		a.Growth -= 10
		a.Speculative -= 10
		notes = append(notes, "defensive shift into buffer and yield")
	}

	if sig.MomentumIndex < oversoldThreshold {
		a.Buffer -= 5
		a.Growth += 5
		notes = append(notes, fmt.Sprintf("oversold momentum %.0f, adding growth", sig.MomentumIndex))
	}
	if sig.HypeLevel == domain.LevelHigh {
		a.Buffer -= 5
		a.Speculative += 5
		notes = append(notes, "high meme activity, adding speculative")
	}

	normalized := ClampAndNormalize(a, limits)
	reasoning := "rule-based allocation: " + strings.Join(notes, "; ")
	return normalized, reasoning
}
