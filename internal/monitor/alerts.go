package monitor

import (
	"fmt"
	"strings"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// Keyword groups scanned against fetched intelligence. Matching is
// case-insensitive substring over title + snippet.
var (
	earningsKeywords  = []string{"earnings", "guidance", "outlook", "forecast", "pre-announce"}
	downgradeKeywords = []string{"downgrade", "cut to", "lowered to", "underperform", "sell rating", "reduced price target"}
	operationalKeywords = []string{"supply chain", "lawsuit", "litigation", "regulator", "regulatory",
		"investigation", "recall", "subpoena", "probe", "strike", "breach"}
)

// BuildAlerts scans the intel bundle and position geometry for risk signals.
// Output ordering is fixed so persisted snapshots round-trip byte-identically.
func BuildAlerts(pos *contracts.ActivePosition, dte int, bundle *contracts.IntelBundle, cfg contracts.MonitorConfig) []contracts.RiskAlert {
	alerts := make([]contracts.RiskAlert, 0, 6)

	// 1. Earnings / guidance mentions in catalysts
	if hit := firstMatch(bundle.Items[contracts.IntelCatalysts], earningsKeywords); hit != "" {
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertEarningsRisk,
			Severity: contracts.RiskCritical,
			Message:  fmt.Sprintf("earnings-related catalyst detected: %s", hit),
		})
	}

	// 2. Downgrade language in analyst activity
	if hit := firstMatch(bundle.Items[contracts.IntelAnalyst], downgradeKeywords); hit != "" {
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertAnalystDowngrade,
			Severity: contracts.RiskHigh,
			Message:  fmt.Sprintf("analyst downgrade activity: %s", hit),
		})
	}

	// 3. Supply-chain / legal / regulatory signals in filings + operational feeds
	operationalItems := append([]contracts.IntelItem{},
		bundle.Items[contracts.IntelFilings]...)
	operationalItems = append(operationalItems, bundle.Items[contracts.IntelOperational]...)
	if hit := firstMatch(operationalItems, operationalKeywords); hit != "" {
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertOperationalRisk,
			Severity: contracts.RiskHigh,
			Message:  fmt.Sprintf("operational risk signal: %s", hit),
		})
	}

	// 4. Unusual news volume
	if newsCount := len(bundle.Items[contracts.IntelNews]); newsCount > cfg.NewsVolumeThreshold {
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertHighNewsVolume,
			Severity: contracts.RiskMedium,
			Message:  fmt.Sprintf("%d news items in lookback window (threshold %d)", newsCount, cfg.NewsVolumeThreshold),
		})
	}

	// 5. Expiration approaching
	if dte <= cfg.DTEWarn {
		severity := contracts.RiskMedium
		if dte <= cfg.DTECritical {
			severity = contracts.RiskHigh
		}
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertExpirationNear,
			Severity: severity,
			Message:  fmt.Sprintf("%d days to expiration", dte),
		})
	}

	// 6. Price near the short strike
	proximity := pos.StrikeProximity()
	if proximity <= cfg.StrikeProximityWarn {
		severity := contracts.RiskHigh
		if proximity < cfg.StrikeProximityCrit {
			severity = contracts.RiskCritical
		}
		alerts = append(alerts, contracts.RiskAlert{
			Type:     contracts.AlertNearShortStrike,
			Severity: severity,
			Message:  fmt.Sprintf("price %.2f within %.1f%% of short strike %.2f", pos.CurrentPrice, proximity*100, pos.ShortStrike),
		})
	}

	return alerts
}

// OverallRiskLevel aggregates alert severities into one level:
// critical when any critical alert or two high alerts exist; high when one
// high or two medium; medium when one medium; otherwise low.
func OverallRiskLevel(alerts []contracts.RiskAlert) contracts.RiskLevel {
	var critical, high, medium int
	for _, a := range alerts {
		switch a.Severity {
		case contracts.RiskCritical:
			critical++
		case contracts.RiskHigh:
			high++
		case contracts.RiskMedium:
			medium++
		}
	}

	switch {
	case critical >= 1 || high >= 2:
		return contracts.RiskCritical
	case high >= 1 || medium >= 2:
		return contracts.RiskHigh
	case medium >= 1:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}

// firstMatch returns the title of the first item matching any keyword
func firstMatch(items []contracts.IntelItem, keywords []string) string {
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Snippet)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return item.Title
			}
		}
	}
	return ""
}
