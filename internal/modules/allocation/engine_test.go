package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

type fakeAdvisor struct {
	calls  int
	result *domain.AdvisorResult
	err    error
}

func (f *fakeAdvisor) ProposeAllocation(_ context.Context, _ domain.AdvisorRequest) (*domain.AdvisorResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCollector struct {
	signals domain.MarketSignals
}

func (f *fakeCollector) Collect(_ context.Context) domain.MarketSignals {
	return f.signals
}

func newTestEngine(advisor domain.AdvisorClient) (*Engine, *time.Time) {
	current := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(advisor, &fakeCollector{signals: domain.NeutralSignals()}, NewStore(), zerolog.Nop())
	e.now = func() time.Time { return current }
	return e, &current
}

func TestTarget_NoAdvisorUsesRules(t *testing.T) {
	e, _ := newTestEngine(nil)
	d := e.Target(context.Background(), domain.RiskMedium)

	assert.Equal(t, "rules", d.Source)
	assert.Equal(t, domain.RiskMedium, d.Profile)
	assert.InDelta(t, 100.0, d.Allocation.Sum(), 1e-9)
}

func TestTarget_AdvisorResultIsClampedAndCached(t *testing.T) {
	advisor := &fakeAdvisor{result: &domain.AdvisorResult{
		Allocation: domain.Allocation{Buffer: 10, Yield: 10, Growth: 10, Speculative: 90, Commodity: 0},
		Reasoning:  "full degen",
		Confidence: 0.9,
		Mood:       "risk-on",
	}}
	e, _ := newTestEngine(advisor)

	d := e.Target(context.Background(), domain.RiskLow)
	require.Equal(t, "advisor", d.Source)
	assert.Equal(t, 1, advisor.calls)
	assert.Equal(t, 0.0, d.Allocation.Speculative, "low profile ceiling overrides the advisor")
	assert.InDelta(t, 100.0, d.Allocation.Sum(), 1e-9)

	// Second call inside the TTL is served from cache.
	cached := e.Target(context.Background(), domain.RiskLow)
	assert.Equal(t, "cache", cached.Source)
	assert.Equal(t, d.Allocation, cached.Allocation)
	assert.Equal(t, 1, advisor.calls)
}

func TestTarget_CacheIsPerProfile(t *testing.T) {
	advisor := &fakeAdvisor{result: &domain.AdvisorResult{
		Allocation: domain.Allocation{Buffer: 40, Yield: 25, Growth: 20, Speculative: 10, Commodity: 5},
	}}
	e, _ := newTestEngine(advisor)

	e.Target(context.Background(), domain.RiskLow)
	e.Target(context.Background(), domain.RiskHigh)
	assert.Equal(t, 2, advisor.calls, "each profile warms its own cache entry")

	e.Target(context.Background(), domain.RiskLow)
	e.Target(context.Background(), domain.RiskHigh)
	assert.Equal(t, 2, advisor.calls)
}

func TestTarget_CacheExpiresAfterTTL(t *testing.T) {
	advisor := &fakeAdvisor{result: &domain.AdvisorResult{
		Allocation: domain.Allocation{Buffer: 40, Yield: 25, Growth: 20, Speculative: 10, Commodity: 5},
	}}
	e, now := newTestEngine(advisor)

	e.Target(context.Background(), domain.RiskMedium)
	require.Equal(t, 1, advisor.calls)

	*now = now.Add(CacheTTL + time.Second)
	d := e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, "advisor", d.Source)
	assert.Equal(t, 2, advisor.calls)
}

func TestTarget_RateLimitStartsCooldown(t *testing.T) {
	advisor := &fakeAdvisor{err: &domain.RateLimitError{RetryAfter: 30 * time.Second}}
	e, now := newTestEngine(advisor)

	// First call hits the advisor, gets rate limited and falls back to rules.
	d := e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, "rules", d.Source)
	require.Equal(t, 1, advisor.calls)

	// Within the cooldown window the advisor is not called at all.
	*now = now.Add(10 * time.Second)
	d = e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, "rules", d.Source)
	assert.Equal(t, 1, advisor.calls)

	// Once the provider's delay has elapsed, calls resume.
	*now = now.Add(25 * time.Second)
	e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, 2, advisor.calls)
}

func TestTarget_AdvisorFailureFallsBackWithoutCooldown(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("model returned garbage")}
	e, _ := newTestEngine(advisor)

	d := e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, "rules", d.Source)
	assert.InDelta(t, 100.0, d.Allocation.Sum(), 1e-9)

	// Plain failures do not suppress the next attempt.
	e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, 2, advisor.calls)
}

func TestTarget_RuleDecisionsAreNeverCached(t *testing.T) {
	e, _ := newTestEngine(nil)

	first := e.Target(context.Background(), domain.RiskMedium)
	second := e.Target(context.Background(), domain.RiskMedium)
	assert.Equal(t, "rules", first.Source)
	assert.Equal(t, "rules", second.Source, "rule output must not be served as cache")
}

func TestStore_CooldownExpiry(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.SetCooldown(now.Add(time.Minute))

	assert.True(t, s.CoolingDown(now))
	assert.True(t, s.CoolingDown(now.Add(59*time.Second)))
	assert.False(t, s.CoolingDown(now.Add(61*time.Second)))
}
