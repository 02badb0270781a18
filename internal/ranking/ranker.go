package ranking

import (
	"sort"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Ranker produces independently-sorted top-N views over scored candidates
type Ranker struct {
	topN   int
	logger *logger.Logger
}

// RankedViews holds the four diagnostic views, each truncated to top N.
// These views are comparative, not diversified.
type RankedViews struct {
	ByComposite   []contracts.ScoredCandidate `json:"by_composite"`
	ByIPS         []contracts.ScoredCandidate `json:"by_ips"`
	ByYield       []contracts.ScoredCandidate `json:"by_yield"`
	ByEVPerDollar []contracts.ScoredCandidate `json:"by_ev_per_dollar"`
}

// DefaultTopN is the view truncation size
const DefaultTopN = 20

// NewRanker creates a new ranker
func NewRanker(topN int, log *logger.Logger) *Ranker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{
		topN:   topN,
		logger: log,
	}
}

// Rank builds the four sorted views. Sorting is descending and stable:
// ties keep original enumeration order, no other tie-break is applied.
func (r *Ranker) Rank(candidates []contracts.ScoredCandidate) *RankedViews {
	views := &RankedViews{
		ByComposite: r.sortedBy(candidates, func(c *contracts.ScoredCandidate) float64 {
			return c.CompositeScore
		}),
		ByIPS: r.sortedBy(candidates, func(c *contracts.ScoredCandidate) float64 {
			return c.IPSScore
		}),
		ByYield: r.sortedBy(candidates, func(c *contracts.ScoredCandidate) float64 {
			return c.YieldScore
		}),
		ByEVPerDollar: r.sortedBy(candidates, func(c *contracts.ScoredCandidate) float64 {
			return c.EVPerDollar
		}),
	}

	r.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"top_n":      r.topN,
	}).Debug("Ranked views built")

	return views
}

// CompositeOrder returns a stable descending copy sorted by composite score,
// untruncated. This is the walk order the diversifier consumes.
func CompositeOrder(candidates []contracts.ScoredCandidate) []contracts.ScoredCandidate {
	out := make([]contracts.ScoredCandidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompositeScore > out[j].CompositeScore
	})
	return out
}

// sortedBy returns a stable descending copy truncated to top N
func (r *Ranker) sortedBy(candidates []contracts.ScoredCandidate, key func(*contracts.ScoredCandidate) float64) []contracts.ScoredCandidate {
	out := make([]contracts.ScoredCandidate, len(candidates))
	copy(out, candidates)

	sort.SliceStable(out, func(i, j int) bool {
		return key(&out[i]) > key(&out[j])
	})

	if len(out) > r.topN {
		out = out[:r.topN]
	}
	return out
}
