package ips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

func f(v float64) *float64 { return &v }

func candidateContext() *FactorContext {
	return &FactorContext{
		Candidate: &contracts.CandidateSpread{
			Symbol:      "AAPL",
			DTE:         30,
			ShortLeg:    contracts.SpreadLeg{Strike: 145, Delta: -0.30},
			LongLeg:     contracts.SpreadLeg{Strike: 140, Delta: -0.20},
			Width:       5,
			EntryCredit: 1.0,
			MaxProfit:   1.0,
			MaxLoss:     4.0,
			PoP:         0.70,
			RiskReward:  0.25,
		},
	}
}

func ipsWith(factors ...contracts.FactorDefinition) *contracts.IPSConfig {
	return &contracts.IPSConfig{ID: "test", Name: "test", Factors: factors}
}

func TestEvaluate_AllPass(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.65), Enabled: true},
		contracts.FactorDefinition{Key: "dte", Weight: 1, Direction: contracts.DirectionRange, Threshold: f(7), ThresholdMax: f(45), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	for _, d := range result.Details {
		assert.True(t, d.Passed)
		assert.Equal(t, contracts.SeverityPass, d.Severity)
	}
}

func TestEvaluate_NilThresholdAutoPasses(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, "no constraint", result.Details[0].Target)
}

func TestEvaluate_UnresolvableIsMajorMiss(t *testing.T) {
	policy := contracts.DefaultScoringPolicy()
	eval := NewEvaluator(DefaultRegistry(), policy, logger.NewNop())

	// rsi_14 requires technicals, which this context lacks
	cfg := ipsWith(
		contracts.FactorDefinition{Key: "rsi_14", Weight: 1, Direction: contracts.DirectionAtMost, Threshold: f(70), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	assert.False(t, result.Details[0].Passed)
	assert.Nil(t, result.Details[0].Observed)
	assert.Equal(t, contracts.SeverityMajorMiss, result.Details[0].Severity)
	assert.Equal(t, policy.MajorMissFloor, result.Score)
}

func TestEvaluate_MinorMissGrading(t *testing.T) {
	policy := contracts.DefaultScoringPolicy()
	eval := NewEvaluator(DefaultRegistry(), policy, logger.NewNop())

	// PoP 0.70 against a 0.75 floor: 6.7% relative distance, a minor miss
	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.75), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	d := result.Details[0]
	assert.False(t, d.Passed)
	assert.Equal(t, contracts.SeverityMinorMiss, d.Severity)
	assert.Greater(t, d.Score, policy.MinorMissFloor)
	assert.LessOrEqual(t, d.Score, policy.MinorMissCeiling)
}

func TestEvaluate_MajorMissGrading(t *testing.T) {
	policy := contracts.DefaultScoringPolicy()
	eval := NewEvaluator(DefaultRegistry(), policy, logger.NewNop())

	// PoP 0.70 against a 0.95 floor: 26% relative distance, a major miss
	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.95), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	d := result.Details[0]
	assert.Equal(t, contracts.SeverityMajorMiss, d.Severity)
	assert.GreaterOrEqual(t, d.Score, policy.MajorMissFloor)
	assert.Less(t, d.Score, policy.MinorMissFloor)
}

func TestEvaluate_WeightedAverage(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	// One passing factor at weight 3, one failing hard at weight 1
	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 3, Direction: contracts.DirectionAtLeast, Threshold: f(0.65), Enabled: true},
		contracts.FactorDefinition{Key: "rsi_14", Weight: 1, Direction: contracts.DirectionAtMost, Threshold: f(70), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	// (100*3 + 30*1) / 4
	assert.InDelta(t, 82.5, result.Score, 0.0001)
}

func TestEvaluate_DisabledFactorsIgnored(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.65), Enabled: true},
		contracts.FactorDefinition{Key: "rsi_14", Weight: 10, Direction: contracts.DirectionAtMost, Threshold: f(70), Enabled: false},
	)

	result, err := eval.Evaluate(cfg, candidateContext())
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	assert.Len(t, result.Details, 1)
}

func TestEvaluate_NoEnabledFactorsIsError(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.65), Enabled: false},
	)

	_, err := eval.Evaluate(cfg, candidateContext())
	assert.Error(t, err)
}

func TestEvaluate_Idempotent(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())
	fctx := candidateContext()

	cfg := ipsWith(
		contracts.FactorDefinition{Key: "pop", Weight: 2, Direction: contracts.DirectionAtLeast, Threshold: f(0.75), Enabled: true},
		contracts.FactorDefinition{Key: "risk_reward", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.20), Enabled: true},
	)

	first, err := eval.Evaluate(cfg, fctx)
	require.NoError(t, err)
	second, err := eval.Evaluate(cfg, fctx)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Details, second.Details)
}

func TestComposite(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	// 0.4 * 80 + 0.6 * 90
	assert.InDelta(t, 86.0, eval.Composite(80, 90), 0.0001)
}

func TestRangeDirection(t *testing.T) {
	eval := NewEvaluator(DefaultRegistry(), contracts.DefaultScoringPolicy(), logger.NewNop())

	// DTE 30 outside a tight 35-45 window misses against the lower bound
	cfg := ipsWith(
		contracts.FactorDefinition{Key: "dte", Weight: 1, Direction: contracts.DirectionRange, Threshold: f(35), ThresholdMax: f(45), Enabled: true},
	)

	result, err := eval.Evaluate(cfg, cand30())
	require.NoError(t, err)
	assert.False(t, result.Details[0].Passed)
	assert.Equal(t, "35 - 45", result.Details[0].Target)
}

func cand30() *FactorContext {
	fctx := candidateContext()
	fctx.Candidate.DTE = 30
	return fctx
}
