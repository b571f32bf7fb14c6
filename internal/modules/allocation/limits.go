// Package allocation turns market signals and a risk profile into a target
// percentage allocation across vaults.
package allocation

import (
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// riskLimitTable is the fixed ceiling table per risk profile. Low-risk users
// never touch the speculative vault.
var riskLimitTable = map[domain.RiskProfile]domain.RiskLimits{
	domain.RiskLow: {
		BufferMax:      70,
		YieldMax:       30,
		GrowthMax:      20,
		SpeculativeMax: 0,
	},
	domain.RiskMedium: {
		BufferMax:      50,
		YieldMax:       40,
		GrowthMax:      35,
		SpeculativeMax: 15,
	},
	domain.RiskHigh: {
		BufferMax:      35,
		YieldMax:       45,
		GrowthMax:      50,
		SpeculativeMax: 30,
	},
}

// LimitsFor returns the ceiling table entry for a profile. Unknown profiles
// get the low-risk ceilings; tightening is the safe direction.
func LimitsFor(profile domain.RiskProfile) domain.RiskLimits {
	if limits, ok := riskLimitTable[profile]; ok {
		return limits
	}
	return riskLimitTable[domain.RiskLow]
}

// Clamp caps each vault at its ceiling and floors it at zero. The result
// usually no longer sums to 100; Normalize restores that.
func Clamp(a domain.Allocation, limits domain.RiskLimits) domain.Allocation {
	var out domain.Allocation
	for _, id := range domain.VaultOrder {
		v := a.For(id)
		if v < 0 {
			v = 0
		}
		if ceiling := limits.CeilingFor(id); v > ceiling {
			v = ceiling
		}
		out.Set(id, v)
	}
	return out
}

// Normalize rescales a clamped vector to sum to exactly 100 without breaking
// any ceiling. Overshoot scales every vault down uniformly (which cannot
// violate a ceiling); a deficit is distributed across vaults proportionally
// to their remaining headroom. The commodity vault is uncapped, so the total
// headroom always covers the deficit and a single pass lands on 100.
func Normalize(a domain.Allocation, limits domain.RiskLimits) domain.Allocation {
	sum := a.Sum()
	if sum <= 0 {
		// Degenerate input: park everything in the buffer up to its ceiling
		// and let commodity absorb the rest.
		var out domain.Allocation
		out.Buffer = limits.BufferMax
		out.Commodity = 100 - limits.BufferMax
		return out
	}

	if sum > 100 {
		var out domain.Allocation
		scale := 100 / sum
		for _, id := range domain.VaultOrder {
			out.Set(id, a.For(id)*scale)
		}
		return out
	}

	deficit := 100 - sum
	if deficit == 0 {
		return a
	}
	totalHeadroom := 0.0
	for _, id := range domain.VaultOrder {
		totalHeadroom += limits.CeilingFor(id) - a.For(id)
	}
	out := a
	for _, id := range domain.VaultOrder {
		headroom := limits.CeilingFor(id) - a.For(id)
		out.Set(id, a.For(id)+deficit*headroom/totalHeadroom)
	}
	return out
}

// ClampAndNormalize applies both steps. This is the single policy for both
// the advisor path and the rule-based path.
func ClampAndNormalize(a domain.Allocation, limits domain.RiskLimits) domain.Allocation {
	return Normalize(Clamp(a, limits), limits)
}
