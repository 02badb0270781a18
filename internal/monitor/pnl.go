package monitor

import (
	"fmt"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// ComputePL derives the live profit/loss and exit signal for an open credit
// spread from current leg mid prices.
//
//	pl_dollar  = (credit - spread_mid) * contracts * 100
//	pl_percent = (credit - spread_mid) / credit * 100
func ComputePL(creditReceived, shortMid, longMid float64, numContracts int, cfg contracts.MonitorConfig) contracts.PositionPL {
	spreadMid := shortMid - longMid
	if spreadMid < 0 {
		spreadMid = 0
	}

	pl := contracts.PositionPL{
		SpreadMid: spreadMid,
	}

	if creditReceived <= 0 {
		return pl
	}

	perShare := creditReceived - spreadMid
	pl.PLDollar = perShare * float64(numContracts) * 100
	pl.PLPercent = perShare / creditReceived * 100

	switch {
	case pl.PLPercent >= cfg.ProfitTargetPct:
		pl.ShouldExit = true
		pl.ExitType = contracts.ExitProfit
		pl.ExitReason = fmt.Sprintf("profit target reached: %.1f%% of credit captured (target %.0f%%)",
			pl.PLPercent, cfg.ProfitTargetPct)

	case pl.PLPercent <= -cfg.StopLossPct:
		pl.ShouldExit = true
		pl.ExitType = contracts.ExitLoss
		pl.ExitReason = fmt.Sprintf("stop loss breached: %.1f%% of credit (threshold -%.0f%%)",
			pl.PLPercent, cfg.StopLossPct)

	case pl.PLPercent >= cfg.ProfitWarningPct:
		// Approaching target, worth a look but not an exit
		pl.Warning = true
	}

	return pl
}
