package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-labs/vantage/internal/contracts"
)

func TestComputePL_ProfitExit(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// Entered at 2.00 credit, spread now trades at 0.80: 60% captured
	pl := ComputePL(2.00, 1.00, 0.20, 1, cfg)

	assert.InDelta(t, 0.80, pl.SpreadMid, 0.0001)
	assert.InDelta(t, 60.0, pl.PLPercent, 0.0001)
	assert.InDelta(t, 120.0, pl.PLDollar, 0.0001)
	assert.True(t, pl.ShouldExit)
	assert.Equal(t, contracts.ExitProfit, pl.ExitType)
}

func TestComputePL_StopLoss(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// Entered at 1.00 credit, spread now trades at 3.50: -250%
	pl := ComputePL(1.00, 4.00, 0.50, 2, cfg)

	assert.InDelta(t, 3.50, pl.SpreadMid, 0.0001)
	assert.InDelta(t, -250.0, pl.PLPercent, 0.0001)
	assert.InDelta(t, -500.0, pl.PLDollar, 0.0001)
	assert.True(t, pl.ShouldExit)
	assert.Equal(t, contracts.ExitLoss, pl.ExitType)
}

func TestComputePL_Warning(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// 35% captured: above the warning line, below the target
	pl := ComputePL(2.00, 1.50, 0.20, 1, cfg)

	assert.InDelta(t, 35.0, pl.PLPercent, 0.0001)
	assert.False(t, pl.ShouldExit)
	assert.True(t, pl.Warning)
}

func TestComputePL_Hold(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	pl := ComputePL(2.00, 1.90, 0.10, 1, cfg)

	assert.InDelta(t, 10.0, pl.PLPercent, 0.0001)
	assert.False(t, pl.ShouldExit)
	assert.False(t, pl.Warning)
}

func TestComputePL_BoundaryIsExit(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// Exactly the profit target counts as an exit
	pl := ComputePL(2.00, 1.10, 0.10, 1, cfg)

	assert.InDelta(t, 50.0, pl.PLPercent, 0.0001)
	assert.True(t, pl.ShouldExit)
	assert.Equal(t, contracts.ExitProfit, pl.ExitType)
}

func TestComputePL_NegativeSpreadMidFloored(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// Crossed leg quotes never produce a negative spread value
	pl := ComputePL(1.00, 0.10, 0.30, 1, cfg)

	assert.Equal(t, 0.0, pl.SpreadMid)
	assert.InDelta(t, 100.0, pl.PLPercent, 0.0001)
}

func TestComputePL_ZeroCreditNoSignal(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	pl := ComputePL(0, 1.00, 0.50, 1, cfg)

	assert.False(t, pl.ShouldExit)
	assert.Equal(t, 0.0, pl.PLPercent)
}
