package ips

import (
	"fmt"
	"math"
	"sort"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// FactorContext is the evaluated subject: a candidate or an open position,
// plus whatever market context the extractors need
type FactorContext struct {
	Candidate  *contracts.CandidateSpread
	Position   *contracts.ActivePosition
	Snapshot   *contracts.MarketSnapshot
	Technicals map[string]float64
}

// Extractor resolves one factor key to a value, or nil when unavailable
type Extractor func(*FactorContext) *float64

// Registry maps factor keys to extraction functions registered at startup.
// Coverage is statically verifiable via Keys.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
	}
}

// Register adds an extractor for a factor key
func (r *Registry) Register(key string, fn Extractor) error {
	if _, exists := r.extractors[key]; exists {
		return fmt.Errorf("extractor already registered for key %q", key)
	}
	r.extractors[key] = fn
	return nil
}

// Resolve returns the observed value for a key, nil when the key has no
// extractor or the extractor cannot produce a value
func (r *Registry) Resolve(key string, fctx *FactorContext) *float64 {
	fn, exists := r.extractors[key]
	if !exists {
		return nil
	}
	return fn(fctx)
}

// Keys returns all registered factor keys, sorted
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.extractors))
	for k := range r.extractors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether a key has a registered extractor
func (r *Registry) Has(key string) bool {
	_, exists := r.extractors[key]
	return exists
}

// DefaultRegistry registers the standard factor extractors
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Spread structure factors
	mustRegister(r, "short_delta", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		v := math.Abs(c.Candidate.ShortLeg.Delta)
		return &v
	})
	mustRegister(r, "implied_vol", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		return &c.Candidate.ShortLeg.ImpliedVol
	})
	mustRegister(r, "dte", func(c *FactorContext) *float64 {
		if c.Candidate != nil {
			v := float64(c.Candidate.DTE)
			return &v
		}
		return nil
	})
	mustRegister(r, "pop", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		return &c.Candidate.PoP
	})
	mustRegister(r, "risk_reward", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		return &c.Candidate.RiskReward
	})
	mustRegister(r, "entry_credit", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		return &c.Candidate.EntryCredit
	})
	mustRegister(r, "spread_width", func(c *FactorContext) *float64 {
		if c.Candidate == nil {
			return nil
		}
		return &c.Candidate.Width
	})

	// Liquidity
	mustRegister(r, "open_interest", func(c *FactorContext) *float64 {
		if c.Snapshot == nil || c.Candidate == nil {
			return nil
		}
		side := contracts.StrategySide(c.Candidate.Strategy)
		for _, oc := range c.Snapshot.Chain {
			if oc.Side == side && oc.Strike == c.Candidate.ShortLeg.Strike && oc.Expiration.Equal(c.Candidate.Expiration) {
				v := float64(oc.OpenInterest)
				return &v
			}
		}
		return nil
	})

	// Fundamentals passthrough
	for _, key := range []string{"market_cap", "pe_ratio", "analyst_target", "week52_high", "week52_low"} {
		k := key
		mustRegister(r, k, func(c *FactorContext) *float64 {
			if c.Snapshot == nil {
				return nil
			}
			return c.Snapshot.Fundamentals.Metric(k)
		})
	}

	// Distance from 52-week high, percent below
	mustRegister(r, "pct_below_52w_high", func(c *FactorContext) *float64 {
		if c.Snapshot == nil {
			return nil
		}
		high := c.Snapshot.Fundamentals.Metric("week52_high")
		if high == nil || *high <= 0 {
			return nil
		}
		v := (*high - c.Snapshot.Quote.Price) / *high * 100
		return &v
	})

	// Technical indicators resolved by the adapter ahead of evaluation
	for _, key := range []string{"rsi_14", "sma_50", "sma_200", "atr_14", "iv_rank"} {
		k := key
		mustRegister(r, k, func(c *FactorContext) *float64 {
			if c.Technicals == nil {
				return nil
			}
			if v, ok := c.Technicals[k]; ok {
				return &v
			}
			return nil
		})
	}

	return r
}

func mustRegister(r *Registry, key string, fn Extractor) {
	if err := r.Register(key, fn); err != nil {
		panic(err)
	}
}
