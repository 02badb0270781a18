package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/internal/generator"
	"github.com/vantage-labs/vantage/internal/ips"
	"github.com/vantage-labs/vantage/internal/marketdata"
	"github.com/vantage-labs/vantage/internal/ranking"
	"github.com/vantage-labs/vantage/internal/scoring"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// technicalIndicators are fetched per symbol and exposed to factor extraction.
// Missing indicators degrade to unavailable factors, never abort the scan.
var technicalIndicators = map[string]map[string]string{
	"rsi_14":  {"window": "14"},
	"sma_50":  {"window": "50"},
	"sma_200": {"window": "200"},
	"atr_14":  {"window": "14"},
	"iv_rank": nil,
}

// Engine runs the full scan pipeline for one symbol: snapshot, candidate
// generation, yield scoring, ips evaluation, ranking, diversification.
type Engine struct {
	market      *marketdata.Adapter
	technicals  contracts.TechnicalProvider
	generator   *generator.Generator
	scorer      *scoring.Scorer
	evaluator   *ips.Evaluator
	ipsRepo     contracts.IPSRepository
	ranker      *ranking.Ranker
	diversifier *ranking.Diversifier
	log         *logger.Logger
}

func New(
	market *marketdata.Adapter,
	technicals contracts.TechnicalProvider,
	gen *generator.Generator,
	scorer *scoring.Scorer,
	evaluator *ips.Evaluator,
	ipsRepo contracts.IPSRepository,
	ranker *ranking.Ranker,
	diversifier *ranking.Diversifier,
	log *logger.Logger,
) *Engine {
	return &Engine{
		market:      market,
		technicals:  technicals,
		generator:   gen,
		scorer:      scorer,
		evaluator:   evaluator,
		ipsRepo:     ipsRepo,
		ranker:      ranker,
		diversifier: diversifier,
		log:         log,
	}
}

// ScanResult is the output of one full scan. Views rank the full scored
// pool; Diversified is the cap-filtered short-list over the composite order.
type ScanResult struct {
	Symbol      string                         `json:"symbol"`
	ScannedAt   time.Time                      `json:"scanned_at"`
	Examined    int                            `json:"examined"`
	Rejections  map[contracts.RejectReason]int `json:"rejections"`
	Scored      []contracts.ScoredCandidate    `json:"scored"`
	Diversified []contracts.ScoredCandidate    `json:"diversified"`
	Views       *ranking.RankedViews           `json:"views"`
}

// Scan evaluates one symbol against an ips factor set
func (e *Engine) Scan(ctx context.Context, symbol, ipsID string) (*ScanResult, error) {
	now := time.Now().UTC()

	ipsCfg, err := e.ipsRepo.GetIPS(ctx, ipsID)
	if err != nil {
		return nil, fmt.Errorf("load ips %s: %w", ipsID, err)
	}

	snap, err := e.market.GetSnapshot(ctx, symbol, true)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}

	gen, err := e.generator.Generate(ctx, snap, now)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", symbol, err)
	}

	technicals := e.fetchTechnicals(ctx, symbol)

	scored := make([]contracts.ScoredCandidate, 0, len(gen.Candidates))
	for i := range gen.Candidates {
		candidate := &gen.Candidates[i]

		yieldScore, evPerDollar := e.scorer.Score(candidate)

		fctx := &ips.FactorContext{
			Candidate:  candidate,
			Snapshot:   snap,
			Technicals: technicals,
		}
		eval, err := e.evaluator.Evaluate(ipsCfg, fctx)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s %s: %w", candidate.Symbol, candidate.Strategy, err)
		}

		composite := e.evaluator.Composite(yieldScore, eval.Score)
		scored = append(scored, contracts.ScoredCandidate{
			CandidateSpread: *candidate,
			YieldScore:      yieldScore,
			EVPerDollar:     evPerDollar,
			IPSScore:        eval.Score,
			CompositeScore:  composite,
			Tier:            contracts.TierFor(eval.Score),
			Factors:         eval.Details,
		})
	}

	// Views compare the full scored pool; the short-list walks the
	// composite order under the concentration caps.
	views := e.ranker.Rank(scored)
	diversified := e.diversifier.Apply(ranking.CompositeOrder(scored))

	e.log.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"ips_id":      ipsID,
		"examined":    gen.Examined,
		"candidates":  len(gen.Candidates),
		"diversified": len(diversified),
	}).Info("scan complete")

	return &ScanResult{
		Symbol:      symbol,
		ScannedAt:   now,
		Examined:    gen.Examined,
		Rejections:  gen.Rejections,
		Scored:      scored,
		Diversified: diversified,
		Views:       views,
	}, nil
}

// fetchTechnicals resolves the indicator set for factor extraction.
// Failures are logged and skipped; the scan proceeds with what it has.
func (e *Engine) fetchTechnicals(ctx context.Context, symbol string) map[string]float64 {
	values := make(map[string]float64, len(technicalIndicators))
	for indicator, params := range technicalIndicators {
		tv, err := e.technicals.GetIndicator(ctx, symbol, indicator, params)
		if err != nil {
			e.log.WithFields(map[string]interface{}{
				"symbol":    symbol,
				"indicator": indicator,
				"error":     err.Error(),
			}).Debug("indicator unavailable")
			continue
		}
		values[indicator] = tv.Value
	}
	return values
}
