package monitor

import (
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// InWatchSet reports whether a position qualifies for intensive monitoring.
// A position is watched when any of these hold:
//   - its IPS score has dropped below the watch threshold
//   - price is within the strike-proximity warning band of the short strike
//   - expiration is at most the watch DTE
//   - the most recent monitoring pass graded it high or critical
//
// last may be nil when the position has never been monitored.
func InWatchSet(pos *contracts.ActivePosition, last *contracts.MonitorResult, now time.Time, cfg contracts.MonitorConfig) bool {
	if pos.IPSScore < cfg.WatchIPSScoreBelow {
		return true
	}
	if pos.StrikeProximity() <= cfg.StrikeProximityWarn {
		return true
	}
	if pos.DTE(now) <= cfg.WatchDTEAtMost {
		return true
	}
	if last != nil && last.RiskLevel.AtLeast(contracts.RiskHigh) {
		return true
	}
	return false
}

// FilterWatchSet returns the subset of positions in the watch set, preserving
// input order. latest maps position ID to its most recent result.
func FilterWatchSet(positions []*contracts.ActivePosition, latest map[string]*contracts.MonitorResult, now time.Time, cfg contracts.MonitorConfig) []*contracts.ActivePosition {
	watched := make([]*contracts.ActivePosition, 0, len(positions))
	for _, pos := range positions {
		if InWatchSet(pos, latest[pos.ID], now, cfg) {
			watched = append(watched, pos)
		}
	}
	return watched
}
