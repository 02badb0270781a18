package monitor

import (
	"fmt"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// Recommend produces deterministic action guidance for one monitoring pass.
// Exit signals come first, then per-alert guidance in alert order, then a
// hold line when nothing actionable was found.
func Recommend(pl contracts.PositionPL, alerts []contracts.RiskAlert, dte int) []string {
	recs := make([]string, 0, 4)

	if pl.ShouldExit {
		switch pl.ExitType {
		case contracts.ExitProfit:
			recs = append(recs, fmt.Sprintf("CLOSE: profit target reached at %.1f%% of max profit", pl.PLPercent))
		case contracts.ExitLoss:
			recs = append(recs, fmt.Sprintf("CLOSE: stop loss breached at %.1f%% of credit received", pl.PLPercent))
		}
	} else if pl.Warning {
		recs = append(recs, fmt.Sprintf("WATCH: %.1f%% of max profit captured, approaching target", pl.PLPercent))
	}

	for _, a := range alerts {
		switch a.Type {
		case contracts.AlertEarningsRisk:
			recs = append(recs, "REVIEW: earnings event ahead of expiration, consider closing before the announcement")
		case contracts.AlertAnalystDowngrade:
			recs = append(recs, "REVIEW: analyst downgrade activity, reassess the thesis")
		case contracts.AlertOperationalRisk:
			recs = append(recs, "REVIEW: operational risk signal, verify exposure")
		case contracts.AlertHighNewsVolume:
			recs = append(recs, "WATCH: elevated news flow, monitor for direction")
		case contracts.AlertExpirationNear:
			recs = append(recs, fmt.Sprintf("MANAGE: %d DTE, gamma risk rising, close or roll", dte))
		case contracts.AlertNearShortStrike:
			recs = append(recs, "MANAGE: price near short strike, prepare an exit or adjustment")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "HOLD: no action required")
	}
	return recs
}
