package generator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Generator enumerates two-leg credit spread candidates from a normalized chain
type Generator struct {
	config contracts.GeneratorConfig
	logger *logger.Logger
}

// New creates a new generator
func New(config contracts.GeneratorConfig, log *logger.Logger) *Generator {
	return &Generator{
		config: config,
		logger: log,
	}
}

// Generate produces the full cross-product of valid candidates from a snapshot.
// Non-viable pairs are counted per reason, never surfaced as errors.
func (g *Generator) Generate(ctx context.Context, snap *contracts.MarketSnapshot, now time.Time) (*contracts.GenerationResult, error) {
	if g.config.MinDTE < 0 || g.config.MaxDTE <= 0 || g.config.MinDTE > g.config.MaxDTE {
		return nil, fmt.Errorf("invalid DTE bounds [%d, %d]", g.config.MinDTE, g.config.MaxDTE)
	}
	if len(g.config.Widths) == 0 {
		return nil, fmt.Errorf("no spread widths configured")
	}

	result := &contracts.GenerationResult{
		Candidates: make([]contracts.CandidateSpread, 0),
		Rejections: make(map[contracts.RejectReason]int),
	}

	sector := ""
	if snap.Fundamentals != nil {
		sector = snap.Fundamentals.Sector
	}

	expirations := g.groupByExpiration(snap.Chain, snap.Quote.Price, now)

	for _, exp := range expirations {
		// Fewer than 2 usable strikes cannot form a spread
		if len(exp.contracts) < 2 {
			continue
		}

		limit := len(exp.contracts)
		if g.config.MaxStrikes > 0 && g.config.MaxStrikes < limit {
			limit = g.config.MaxStrikes
		}

		for i := 0; i < limit; i++ {
			for _, w := range g.config.Widths {
				result.Examined++

				longIdx := i + w
				if longIdx >= len(exp.contracts) {
					result.Rejections[contracts.RejectIndexOutOfRange]++
					continue
				}

				candidate, reason := g.buildSpread(snap.Quote.Symbol, sector, exp, i, longIdx)
				if reason != "" {
					result.Rejections[reason]++
					continue
				}

				result.Candidates = append(result.Candidates, *candidate)
			}
		}
	}

	g.logger.WithFields(map[string]interface{}{
		"symbol":      snap.Quote.Symbol,
		"expirations": len(expirations),
		"examined":    result.Examined,
		"accepted":    len(result.Candidates),
		"rejections":  result.Rejections,
	}).Info("Candidate generation completed")

	return result, nil
}

// expirationGroup holds one expiration's out-of-the-money strikes, sorted descending
type expirationGroup struct {
	expiration time.Time
	dte        int
	contracts  []contracts.OptionContract
}

// groupByExpiration filters the chain to the configured side and OTM strikes,
// derives DTE per expiration, and keeps the nearest N expirations within bounds
func (g *Generator) groupByExpiration(chain []contracts.OptionContract, currentPrice float64, now time.Time) []expirationGroup {
	byExp := make(map[time.Time][]contracts.OptionContract)

	for _, c := range chain {
		if c.Side != g.config.Side {
			continue
		}
		// OTM relative to current price: below for puts, above for calls
		if g.config.Side == contracts.SidePut && c.Strike >= currentPrice {
			continue
		}
		if g.config.Side == contracts.SideCall && c.Strike <= currentPrice {
			continue
		}
		byExp[c.Expiration] = append(byExp[c.Expiration], c)
	}

	groups := make([]expirationGroup, 0, len(byExp))
	for exp, cs := range byExp {
		dte := daysToExpiration(exp, now)
		if dte < g.config.MinDTE || dte > g.config.MaxDTE {
			continue
		}

		// Strikes descending within each expiration: index i+w is the
		// Nth cheaper strike below index i
		sort.Slice(cs, func(a, b int) bool {
			return cs[a].Strike > cs[b].Strike
		})

		groups = append(groups, expirationGroup{
			expiration: exp,
			dte:        dte,
			contracts:  cs,
		})
	}

	// Nearest expirations first
	sort.Slice(groups, func(a, b int) bool {
		return groups[a].dte < groups[b].dte
	})

	if g.config.MaxExpirations > 0 && len(groups) > g.config.MaxExpirations {
		groups = groups[:g.config.MaxExpirations]
	}

	return groups
}

// buildSpread validates a strike pair and constructs the candidate.
// Returns a typed reject reason when the pair is non-viable.
func (g *Generator) buildSpread(symbol, sector string, exp expirationGroup, shortIdx, longIdx int) (*contracts.CandidateSpread, contracts.RejectReason) {
	short := exp.contracts[shortIdx]
	long := exp.contracts[longIdx]

	width := short.Strike - long.Strike
	if width <= 0 {
		return nil, contracts.RejectNonPositiveWidth
	}

	shortMid, ok := short.Mid()
	if !ok {
		return nil, contracts.RejectNoQuote
	}
	longMid, ok := long.Mid()
	if !ok {
		return nil, contracts.RejectNoQuote
	}

	credit := shortMid - longMid
	if credit <= 0 {
		return nil, contracts.RejectNonPositiveCredit
	}

	maxLoss := width - credit
	if maxLoss <= 0 {
		// Credit exceeding width means riskless arbitrage, i.e. bad data
		return nil, contracts.RejectNoQuote
	}

	riskReward := credit / maxLoss
	if riskReward < g.config.MinRiskReward {
		return nil, contracts.RejectLowRiskReward
	}

	breakeven := short.Strike - credit
	if g.config.Side == contracts.SideCall {
		breakeven = short.Strike + credit
	}

	strategy := contracts.StrategyPutCredit
	if g.config.Side == contracts.SideCall {
		strategy = contracts.StrategyCallCredit
	}

	return &contracts.CandidateSpread{
		Symbol:      symbol,
		Sector:      sector,
		Strategy:    strategy,
		Expiration:  exp.expiration,
		DTE:         exp.dte,
		ShortLeg:    toLeg(short, shortMid),
		LongLeg:     toLeg(long, longMid),
		Width:       width,
		EntryCredit: credit,
		MaxProfit:   credit,
		MaxLoss:     maxLoss,
		Breakeven:   breakeven,
		PoP:         1 - math.Abs(short.Delta),
		RiskReward:  riskReward,
	}, ""
}

func toLeg(c contracts.OptionContract, mid float64) contracts.SpreadLeg {
	leg := contracts.SpreadLeg{
		Strike:     c.Strike,
		Mid:        mid,
		Delta:      c.Delta,
		Gamma:      c.Gamma,
		Theta:      c.Theta,
		Vega:       c.Vega,
		ImpliedVol: c.ImpliedVol,
	}
	if c.Bid != nil {
		leg.Bid = *c.Bid
	}
	if c.Ask != nil {
		leg.Ask = *c.Ask
	}
	return leg
}

// daysToExpiration returns whole days until expiration, ceiling
func daysToExpiration(expiration, now time.Time) int {
	return int(math.Ceil(expiration.Sub(now).Hours() / 24))
}
