package allocation

import (
	"sync"
	"time"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Decision is the engine's output: a normalized allocation plus how it was
// produced.
type Decision struct {
	Allocation domain.Allocation     `json:"allocation"`
	Reasoning  string                `json:"reasoning"`
	Signals    domain.MarketSignals  `json:"signals"`
	Source     string                `json:"source"` // advisor, rules or cache
	Profile    domain.RiskProfile    `json:"profile"`
}

type cacheEntry struct {
	decision  Decision
	expiresAt time.Time
}

// Store holds the per-profile advisor cache and the provider cooldown.
// All access goes through the mutex; the engine never touches package-level
// mutable state.
type Store struct {
	mu            sync.Mutex
	entries       map[domain.RiskProfile]cacheEntry
	cooldownUntil time.Time
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{entries: make(map[domain.RiskProfile]cacheEntry)}
}

// Get returns the cached decision for a profile if it has not expired.
func (s *Store) Get(profile domain.RiskProfile, now time.Time) (Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[profile]
	if !ok || now.After(entry.expiresAt) {
		return Decision{}, false
	}
	return entry.decision, true
}

// Put caches a decision for a profile until expiresAt.
func (s *Store) Put(profile domain.RiskProfile, d Decision, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[profile] = cacheEntry{decision: d, expiresAt: expiresAt}
}

// SetCooldown suppresses advisor calls until the given time. Last write
// wins; overlapping rate-limit responses only ever extend or shorten the
// same short window.
func (s *Store) SetCooldown(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownUntil = until
}

// CoolingDown reports whether advisor calls are currently suppressed.
func (s *Store) CoolingDown(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.cooldownUntil)
}
