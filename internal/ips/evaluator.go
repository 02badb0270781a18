package ips

import (
	"fmt"
	"math"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Evaluator scores a subject against a weighted IPS factor set.
//
// Factor scores are graded continuously by distance from target: passes score
// 100, minor misses 70-90, major misses 30-70 (the binary 100/50 alternative
// is not implemented).
type Evaluator struct {
	registry *Registry
	policy   contracts.ScoringPolicy
	logger   *logger.Logger
}

// Evaluation is the weighted result plus per-factor detail
type Evaluation struct {
	Score   float64                            `json:"score"` // 0-100
	Details []contracts.FactorEvaluationDetail `json:"details"`
}

// NewEvaluator creates a new evaluator
func NewEvaluator(registry *Registry, policy contracts.ScoringPolicy, log *logger.Logger) *Evaluator {
	return &Evaluator{
		registry: registry,
		policy:   policy,
		logger:   log,
	}
}

// Evaluate computes the weighted ips score for a subject.
// Zero enabled factors is a configuration error; a zero total weight
// degrades to the neutral score instead.
func (e *Evaluator) Evaluate(ipsCfg *contracts.IPSConfig, fctx *FactorContext) (*Evaluation, error) {
	enabled := ipsCfg.EnabledFactors()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("ips %q has no enabled factors", ipsCfg.ID)
	}

	details := make([]contracts.FactorEvaluationDetail, 0, len(enabled))
	weightedSum := 0.0
	totalWeight := 0.0

	for _, factor := range enabled {
		detail := e.evaluateFactor(factor, fctx)
		details = append(details, detail)

		weightedSum += detail.Score * detail.Weight
		totalWeight += detail.Weight
	}

	score := e.policy.NeutralScore
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}

	return &Evaluation{
		Score:   score,
		Details: details,
	}, nil
}

// Composite blends a yield score and an ips score per policy
func (e *Evaluator) Composite(yieldScore, ipsScore float64) float64 {
	return yieldScore*e.policy.YieldWeight + ipsScore*e.policy.IPSWeight
}

// evaluateFactor scores a single factor for the subject
func (e *Evaluator) evaluateFactor(factor contracts.FactorDefinition, fctx *FactorContext) contracts.FactorEvaluationDetail {
	detail := contracts.FactorEvaluationDetail{
		Key:    factor.Key,
		Weight: factor.Weight,
		Target: describeTarget(factor),
	}

	// Null threshold means no constraint: auto-pass regardless of value
	if factor.Threshold == nil {
		detail.Passed = true
		detail.Score = 100
		detail.Severity = contracts.SeverityPass
		detail.Observed = e.registry.Resolve(factor.Key, fctx)
		return detail
	}

	observed := e.registry.Resolve(factor.Key, fctx)
	detail.Observed = observed

	// A value that cannot be resolved is a miss, graded major
	if observed == nil {
		detail.Passed = false
		detail.Score = e.policy.MajorMissFloor
		detail.Severity = contracts.SeverityMajorMiss
		return detail
	}

	passed := checkDirection(factor, *observed)
	detail.Passed = passed

	if passed {
		detail.Score = 100
		detail.Severity = contracts.SeverityPass
		return detail
	}

	detail.Score, detail.Severity = e.gradeMiss(factor, *observed)
	return detail
}

// gradeMiss grades a failed factor by relative distance from its target
func (e *Evaluator) gradeMiss(factor contracts.FactorDefinition, observed float64) (float64, contracts.Severity) {
	target := nearestTarget(factor, observed)

	anchor := math.Abs(target)
	if anchor < 1e-9 {
		anchor = 1
	}
	distance := math.Abs(observed-target) / anchor

	p := e.policy
	if distance <= p.MinorBand {
		// Minor miss: ceiling down to the minor floor, proportional to distance
		score := p.MinorMissCeiling - (distance/p.MinorBand)*(p.MinorMissCeiling-p.MinorMissFloor)
		return score, contracts.SeverityMinorMiss
	}

	// Major miss: minor floor down to the major floor, proportional, clamped
	span := p.MajorBand - p.MinorBand
	frac := (distance - p.MinorBand) / span
	if frac > 1 {
		frac = 1
	}
	score := p.MinorMissFloor - frac*(p.MinorMissFloor-p.MajorMissFloor)
	return score, contracts.SeverityMajorMiss
}

// checkDirection evaluates pass/fail for each direction
func checkDirection(factor contracts.FactorDefinition, observed float64) bool {
	threshold := *factor.Threshold

	switch factor.Direction {
	case contracts.DirectionAtLeast:
		return observed >= threshold
	case contracts.DirectionAtMost:
		return observed <= threshold
	case contracts.DirectionEquals:
		return observed == threshold
	case contracts.DirectionRange:
		if factor.ThresholdMax == nil {
			return observed >= threshold
		}
		return observed >= threshold && observed <= *factor.ThresholdMax
	default:
		return false
	}
}

// nearestTarget returns the threshold the observed value should be measured
// against; for ranges, the nearest violated bound
func nearestTarget(factor contracts.FactorDefinition, observed float64) float64 {
	threshold := *factor.Threshold

	if factor.Direction == contracts.DirectionRange && factor.ThresholdMax != nil {
		if observed > *factor.ThresholdMax {
			return *factor.ThresholdMax
		}
		return threshold
	}
	return threshold
}

// describeTarget renders a human-readable target for the evaluation detail
func describeTarget(factor contracts.FactorDefinition) string {
	if factor.Threshold == nil {
		return "no constraint"
	}

	switch factor.Direction {
	case contracts.DirectionAtLeast:
		return fmt.Sprintf(">= %g", *factor.Threshold)
	case contracts.DirectionAtMost:
		return fmt.Sprintf("<= %g", *factor.Threshold)
	case contracts.DirectionEquals:
		return fmt.Sprintf("= %g", *factor.Threshold)
	case contracts.DirectionRange:
		if factor.ThresholdMax != nil {
			return fmt.Sprintf("%g - %g", *factor.Threshold, *factor.ThresholdMax)
		}
		return fmt.Sprintf(">= %g", *factor.Threshold)
	default:
		return "unknown"
	}
}
