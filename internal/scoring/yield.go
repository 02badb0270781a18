package scoring

import (
	"math"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Scorer computes risk-adjusted yield metrics per candidate.
// Purely numeric and side-effect free; deterministic for identical inputs.
type Scorer struct {
	weights YieldWeights
	logger  *logger.Logger
}

// YieldWeights defines the blend behind the 0-100 yield score
type YieldWeights struct {
	AnnualizedReturn float64 // weight of annualized return on risk
	PoP              float64 // weight of probability of profit
	GreekRisk        float64 // weight of greeks-based risk posture

	// Annualized return (percent) that maps to a full return component
	AnnualizedReturnCap float64
}

// DefaultYieldWeights returns the default yield blend
func DefaultYieldWeights() YieldWeights {
	return YieldWeights{
		AnnualizedReturn:    0.45,
		PoP:                 0.40,
		GreekRisk:           0.15,
		AnnualizedReturnCap: 100,
	}
}

// New creates a new scorer
func New(weights YieldWeights, log *logger.Logger) *Scorer {
	return &Scorer{
		weights: weights,
		logger:  log,
	}
}

// Score computes the yield score and EV-per-dollar for a candidate
func (s *Scorer) Score(c *contracts.CandidateSpread) (yieldScore, evPerDollar float64) {
	yieldScore = s.yieldScore(c)
	evPerDollar = EVPerDollar(c.PoP, c.MaxProfit, c.MaxLoss)
	return yieldScore, evPerDollar
}

// yieldScore blends annualized return on risk, PoP, and a greeks risk posture
// into a 0-100 score
func (s *Scorer) yieldScore(c *contracts.CandidateSpread) float64 {
	// Return component: annualized return on capital at risk, capped
	returnComponent := 0.0
	if c.MaxLoss > 0 && c.DTE > 0 {
		annualized := (c.MaxProfit / c.MaxLoss) * (365.0 / float64(c.DTE)) * 100
		returnComponent = clamp(annualized/s.weights.AnnualizedReturnCap, 0, 1)
	}

	// Probability component: PoP is already in [0,1] for sane deltas
	popComponent := clamp(c.PoP, 0, 1)

	// Risk posture: short premium wants net positive theta and low net delta
	netTheta := c.ShortLeg.Theta - c.LongLeg.Theta
	netDelta := math.Abs(c.ShortLeg.Delta - c.LongLeg.Delta)
	thetaComponent := 0.0
	if netTheta < 0 {
		// Short leg decaying faster than the long hedge
		thetaComponent = 0.5
	}
	deltaComponent := clamp(1-netDelta*2, 0, 1) * 0.5
	riskComponent := thetaComponent + deltaComponent

	score := (returnComponent*s.weights.AnnualizedReturn +
		popComponent*s.weights.PoP +
		riskComponent*s.weights.GreekRisk) * 100

	return clamp(score, 0, 100)
}

// EVPerDollar returns the expected value per dollar risked:
// (PoP * maxProfit - (1-PoP) * maxLoss) / maxLoss
func EVPerDollar(pop, maxProfit, maxLoss float64) float64 {
	if maxLoss <= 0 {
		return 0
	}
	ev := pop*maxProfit - (1-pop)*maxLoss
	return ev / maxLoss
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
