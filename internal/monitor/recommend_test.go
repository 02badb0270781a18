package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
)

func TestRecommend_ExitFirst(t *testing.T) {
	pl := contracts.PositionPL{
		ShouldExit: true,
		ExitType:   contracts.ExitProfit,
		PLPercent:  60,
	}
	alerts := []contracts.RiskAlert{
		{Type: contracts.AlertExpirationNear, Severity: contracts.RiskMedium},
	}

	recs := Recommend(pl, alerts, 5)

	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "CLOSE: profit target")
	assert.Contains(t, recs[1], "MANAGE: 5 DTE")
}

func TestRecommend_HoldWhenQuiet(t *testing.T) {
	recs := Recommend(contracts.PositionPL{PLPercent: 10}, nil, 30)

	require.Len(t, recs, 1)
	assert.Equal(t, "HOLD: no action required", recs[0])
}

func TestRecommend_WarningWithoutExit(t *testing.T) {
	pl := contracts.PositionPL{Warning: true, PLPercent: 35}

	recs := Recommend(pl, nil, 30)

	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "WATCH: 35.0%")
}

func TestRecommend_Deterministic(t *testing.T) {
	pl := contracts.PositionPL{ShouldExit: true, ExitType: contracts.ExitLoss, PLPercent: -250}
	alerts := []contracts.RiskAlert{
		{Type: contracts.AlertEarningsRisk, Severity: contracts.RiskCritical},
		{Type: contracts.AlertNearShortStrike, Severity: contracts.RiskHigh},
	}

	first := Recommend(pl, alerts, 10)
	second := Recommend(pl, alerts, 10)

	assert.Equal(t, first, second)
}
