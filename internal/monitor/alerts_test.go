package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
)

func quietBundle() *contracts.IntelBundle {
	return &contracts.IntelBundle{
		Items: map[contracts.IntelCategory][]contracts.IntelItem{},
	}
}

func testPosition(currentPrice float64) *contracts.ActivePosition {
	return &contracts.ActivePosition{
		ID:           "pos-1",
		Symbol:       "AAPL",
		ShortStrike:  100,
		LongStrike:   95,
		CurrentPrice: currentPrice,
	}
}

func TestBuildAlerts_Quiet(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// Price well away from the strike, plenty of time left, no intel
	alerts := BuildAlerts(testPosition(120), 30, quietBundle(), cfg)

	assert.Empty(t, alerts)
	assert.Equal(t, contracts.RiskLow, OverallRiskLevel(alerts))
}

func TestBuildAlerts_EarningsIsCritical(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	bundle := quietBundle()
	bundle.Items[contracts.IntelCatalysts] = []contracts.IntelItem{
		{Title: "Company schedules Q3 earnings call", PublishedAt: time.Now()},
	}

	alerts := BuildAlerts(testPosition(120), 30, bundle, cfg)

	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.AlertEarningsRisk, alerts[0].Type)
	assert.Equal(t, contracts.RiskCritical, alerts[0].Severity)
	assert.Equal(t, contracts.RiskCritical, OverallRiskLevel(alerts))
}

func TestBuildAlerts_DowngradeMatchedInSnippet(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	bundle := quietBundle()
	bundle.Items[contracts.IntelAnalyst] = []contracts.IntelItem{
		{Title: "Broker note", Snippet: "Shares cut to underperform on weak demand"},
	}

	alerts := BuildAlerts(testPosition(120), 30, bundle, cfg)

	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.AlertAnalystDowngrade, alerts[0].Type)
	assert.Equal(t, contracts.RiskHigh, alerts[0].Severity)
}

func TestBuildAlerts_NewsVolume(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	bundle := quietBundle()
	items := make([]contracts.IntelItem, cfg.NewsVolumeThreshold+1)
	for i := range items {
		items[i] = contracts.IntelItem{Title: "routine coverage"}
	}
	bundle.Items[contracts.IntelNews] = items

	alerts := BuildAlerts(testPosition(120), 30, bundle, cfg)

	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.AlertHighNewsVolume, alerts[0].Type)
	assert.Equal(t, contracts.RiskMedium, alerts[0].Severity)
	assert.Equal(t, contracts.RiskMedium, OverallRiskLevel(alerts))
}

func TestBuildAlerts_ExpirationEscalation(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	alerts := BuildAlerts(testPosition(120), 7, quietBundle(), cfg)
	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.AlertExpirationNear, alerts[0].Type)
	assert.Equal(t, contracts.RiskMedium, alerts[0].Severity)

	alerts = BuildAlerts(testPosition(120), 3, quietBundle(), cfg)
	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.RiskHigh, alerts[0].Severity)
}

func TestBuildAlerts_StrikeProximityEscalation(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()

	// 4% above the short strike: inside the 5% warning band
	alerts := BuildAlerts(testPosition(104), 30, quietBundle(), cfg)
	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.AlertNearShortStrike, alerts[0].Type)
	assert.Equal(t, contracts.RiskHigh, alerts[0].Severity)

	// 1% above: inside the 2% critical band
	alerts = BuildAlerts(testPosition(101), 30, quietBundle(), cfg)
	require.Len(t, alerts, 1)
	assert.Equal(t, contracts.RiskCritical, alerts[0].Severity)
}

func TestBuildAlerts_DeterministicOrdering(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	bundle := quietBundle()
	bundle.Items[contracts.IntelCatalysts] = []contracts.IntelItem{
		{Title: "Earnings guidance raised"},
	}
	bundle.Items[contracts.IntelAnalyst] = []contracts.IntelItem{
		{Title: "Downgrade to hold"},
	}
	bundle.Items[contracts.IntelOperational] = []contracts.IntelItem{
		{Title: "Supply chain disruption reported"},
	}
	items := make([]contracts.IntelItem, cfg.NewsVolumeThreshold+5)
	bundle.Items[contracts.IntelNews] = items

	pos := testPosition(103)
	alerts := BuildAlerts(pos, 5, bundle, cfg)

	wantOrder := []contracts.AlertType{
		contracts.AlertEarningsRisk,
		contracts.AlertAnalystDowngrade,
		contracts.AlertOperationalRisk,
		contracts.AlertHighNewsVolume,
		contracts.AlertExpirationNear,
		contracts.AlertNearShortStrike,
	}
	require.Len(t, alerts, len(wantOrder))
	for i, want := range wantOrder {
		assert.Equal(t, want, alerts[i].Type, "alert %d", i)
	}

	// Same inputs produce byte-identical serialized output
	again := BuildAlerts(pos, 5, bundle, cfg)
	first, err := json.Marshal(alerts)
	require.NoError(t, err)
	second, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOverallRiskLevel(t *testing.T) {
	tests := []struct {
		name       string
		severities []contracts.RiskLevel
		want       contracts.RiskLevel
	}{
		{"empty", nil, contracts.RiskLow},
		{"one medium", []contracts.RiskLevel{contracts.RiskMedium}, contracts.RiskMedium},
		{"two medium", []contracts.RiskLevel{contracts.RiskMedium, contracts.RiskMedium}, contracts.RiskHigh},
		{"one high", []contracts.RiskLevel{contracts.RiskHigh}, contracts.RiskHigh},
		{"two high", []contracts.RiskLevel{contracts.RiskHigh, contracts.RiskHigh}, contracts.RiskCritical},
		{"one critical", []contracts.RiskLevel{contracts.RiskCritical}, contracts.RiskCritical},
		{"high plus medium", []contracts.RiskLevel{contracts.RiskHigh, contracts.RiskMedium}, contracts.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := make([]contracts.RiskAlert, len(tt.severities))
			for i, s := range tt.severities {
				alerts[i] = contracts.RiskAlert{Severity: s}
			}
			assert.Equal(t, tt.want, OverallRiskLevel(alerts))
		})
	}
}
