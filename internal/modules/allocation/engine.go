package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// CacheTTL is how long a successful advisor decision is reused per profile.
const CacheTTL = 5 * time.Minute

// SignalCollector is the slice of the signals service the engine needs.
type SignalCollector interface {
	Collect(ctx context.Context) domain.MarketSignals
}

// Engine computes the target allocation. Per request it walks a fixed state
// machine: cache check, signal fetch, advisor call when available and not
// cooling down, rule-based fallback otherwise. Advisor decisions are cached
// for CacheTTL; rule-based decisions never are.
type Engine struct {
	advisor   domain.AdvisorClient // nil when no advisor is configured
	collector SignalCollector
	store     *Store
	now       func() time.Time
	log       zerolog.Logger
}

// NewEngine creates a new allocation strategy engine. advisor may be nil.
func NewEngine(advisor domain.AdvisorClient, collector SignalCollector, store *Store, log zerolog.Logger) *Engine {
	return &Engine{
		advisor:   advisor,
		collector: collector,
		store:     store,
		now:       time.Now,
		log:       log.With().Str("service", "allocation").Logger(),
	}
}

// Target returns the normalized target allocation for a risk profile.
// It never fails: every upstream degradation falls through to the rules.
func (e *Engine) Target(ctx context.Context, profile domain.RiskProfile) Decision {
	now := e.now()
	limits := LimitsFor(profile)

	if cached, ok := e.store.Get(profile, now); ok {
		cached.Source = "cache"
		e.log.Debug().Str("profile", string(profile)).Msg("allocation served from cache")
		return cached
	}

	signals := e.collector.Collect(ctx)

	if e.advisor != nil && !e.store.CoolingDown(now) {
		decision, ok := e.tryAdvisor(ctx, profile, limits, signals, now)
		if ok {
			return decision
		}
	}

	alloc, reasoning := RuleBased(signals, limits)
	return Decision{
		Allocation: alloc,
		Reasoning:  reasoning,
		Signals:    signals,
		Source:     "rules",
		Profile:    profile,
	}
}

// tryAdvisor runs the generative path. Rate limits set the cooldown from the
// provider's retry delay; any failure falls through to the rules.
func (e *Engine) tryAdvisor(ctx context.Context, profile domain.RiskProfile, limits domain.RiskLimits, signals domain.MarketSignals, now time.Time) (Decision, bool) {
	result, err := e.advisor.ProposeAllocation(ctx, domain.AdvisorRequest{
		Signals: signals,
		Limits:  limits,
		Profile: profile,
	})
	if err != nil {
		var rateLimit *domain.RateLimitError
		if errors.As(err, &rateLimit) {
			until := now.Add(rateLimit.RetryAfter)
			e.store.SetCooldown(until)
			e.log.Warn().
				Time("until", until).
				Msg("advisor rate limited, suppressing calls until cooldown expires")
		} else {
			e.log.Warn().Err(err).Msg("advisor call failed, falling back to rules")
		}
		return Decision{}, false
	}

	decision := Decision{
		Allocation: ClampAndNormalize(result.Allocation, limits),
		Reasoning:  result.Reasoning,
		Signals:    signals,
		Source:     "advisor",
		Profile:    profile,
	}
	e.store.Put(profile, decision, now.Add(CacheTTL))
	e.log.Info().
		Str("profile", string(profile)).
		Float64("confidence", result.Confidence).
		Str("mood", result.Mood).
		Msg("advisor allocation accepted")
	return decision, true
}
