package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

func testCandidate() *contracts.CandidateSpread {
	return &contracts.CandidateSpread{
		Symbol:      "AAPL",
		Strategy:    "put_credit_spread",
		DTE:         30,
		ShortLeg:    contracts.SpreadLeg{Strike: 145, Delta: -0.30, Theta: -0.05},
		LongLeg:     contracts.SpreadLeg{Strike: 140, Delta: -0.20, Theta: -0.03},
		Width:       5,
		EntryCredit: 1.0,
		MaxProfit:   1.0,
		MaxLoss:     4.0,
		PoP:         0.70,
	}
}

func TestEVPerDollar(t *testing.T) {
	// 0.70 * 1.0 - 0.30 * 4.0 = -0.50, per dollar of the 4.0 at risk
	ev := EVPerDollar(0.70, 1.0, 4.0)
	assert.InDelta(t, -0.125, ev, 0.0001)

	// High-PoP spread with favorable payout is positive
	ev = EVPerDollar(0.90, 1.0, 2.0)
	assert.InDelta(t, (0.9*1.0-0.1*2.0)/2.0, ev, 0.0001)

	// Degenerate risk never divides by zero
	assert.Equal(t, 0.0, EVPerDollar(0.70, 1.0, 0))
}

func TestScore_Deterministic(t *testing.T) {
	scorer := New(DefaultYieldWeights(), logger.NewNop())
	c := testCandidate()

	y1, ev1 := scorer.Score(c)
	y2, ev2 := scorer.Score(c)

	assert.Equal(t, y1, y2)
	assert.Equal(t, ev1, ev2)
}

func TestScore_Bounds(t *testing.T) {
	scorer := New(DefaultYieldWeights(), logger.NewNop())

	y, _ := scorer.Score(testCandidate())
	assert.GreaterOrEqual(t, y, 0.0)
	assert.LessOrEqual(t, y, 100.0)

	// Extreme payout cannot exceed the cap
	rich := testCandidate()
	rich.MaxProfit = 4.0
	rich.MaxLoss = 1.0
	rich.DTE = 7
	rich.PoP = 0.99
	y, _ = scorer.Score(rich)
	assert.LessOrEqual(t, y, 100.0)
}

func TestScore_HigherPoPScoresHigher(t *testing.T) {
	scorer := New(DefaultYieldWeights(), logger.NewNop())

	low := testCandidate()
	low.PoP = 0.55

	high := testCandidate()
	high.PoP = 0.85

	lowScore, _ := scorer.Score(low)
	highScore, _ := scorer.Score(high)
	assert.Greater(t, highScore, lowScore)
}
