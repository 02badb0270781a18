package contracts

import "time"

// MonitorState is the per-position refresh state machine
type MonitorState string

const (
	MonitorFresh      MonitorState = "FRESH"      // cached result inside the freshness window
	MonitorStale      MonitorState = "STALE"      // needs refresh
	MonitorRefreshing MonitorState = "REFRESHING" // fetch in flight, not re-entered
	MonitorEvaluated  MonitorState = "EVALUATED"  // result computed and persisted
)

// RiskLevel grades the aggregated alert severity for a position
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank orders levels for comparisons
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether l is at or above other
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskRank[l] >= riskRank[other]
}

// AlertType identifies an aggregated risk alert
type AlertType string

const (
	AlertEarningsRisk    AlertType = "earnings_risk"
	AlertAnalystDowngrade AlertType = "analyst_downgrade"
	AlertOperationalRisk AlertType = "operational_risk"
	AlertHighNewsVolume  AlertType = "high_news_volume"
	AlertExpirationNear  AlertType = "expiration_approaching"
	AlertNearShortStrike AlertType = "near_short_strike"
)

// RiskAlert is one aggregated signal; ordering within a MonitorResult is stable
type RiskAlert struct {
	Type     AlertType `json:"type"`
	Severity RiskLevel `json:"severity"`
	Message  string    `json:"message"`
}

// ExitType classifies an exit signal
type ExitType string

const (
	ExitProfit ExitType = "profit"
	ExitLoss   ExitType = "loss"
)

// PositionPL is the computed live profit/loss for a position
type PositionPL struct {
	SpreadMid  float64  `json:"spread_mid"`
	PLDollar   float64  `json:"pl_dollar"`
	PLPercent  float64  `json:"pl_percent"`
	ShouldExit bool     `json:"should_exit"`
	ExitType   ExitType `json:"exit_type,omitempty"`
	ExitReason string   `json:"exit_reason,omitempty"`
	Warning    bool     `json:"warning"` // profit approaching target, not yet an exit
}

// MonitorResult is an immutable, timestamped snapshot of one monitoring pass.
// A new record is appended per pass; records are never updated in place.
type MonitorResult struct {
	ID         string    `json:"id"`
	PositionID string    `json:"position_id"`
	Symbol     string    `json:"symbol"`
	CreatedAt  time.Time `json:"created_at"`

	DaysHeld int        `json:"days_held"`
	DTE      int        `json:"dte"`
	PL       PositionPL `json:"pl"`

	Alerts    []RiskAlert `json:"alerts"`
	RiskLevel RiskLevel   `json:"risk_level"`

	Recommendations []string `json:"recommendations"`

	PaidCalls int  `json:"paid_calls"`
	Degraded  bool `json:"degraded"` // some signal categories were unavailable
	FromCache bool `json:"from_cache"`
}

// MonitorConfig holds the monitoring policy constants
type MonitorConfig struct {
	// Exit thresholds, percent of credit received
	ProfitTargetPct  float64 `json:"profit_target_pct"`  // exit when pl% >= this
	StopLossPct      float64 `json:"stop_loss_pct"`      // exit when pl% <= -this
	ProfitWarningPct float64 `json:"profit_warning_pct"` // warn when pl% >= this

	// Alert thresholds
	NewsVolumeThreshold   int     `json:"news_volume_threshold"`
	DTEWarn               int     `json:"dte_warn"`     // high/medium expiration alert
	DTECritical           int     `json:"dte_critical"` // escalates expiration alert to high
	StrikeProximityWarn   float64 `json:"strike_proximity_warn"`   // 0.05 = within 5%
	StrikeProximityCrit   float64 `json:"strike_proximity_crit"`   // 0.02 = within 2%

	// Watch-set filter
	WatchIPSScoreBelow float64 `json:"watch_ips_score_below"`
	WatchDTEAtMost     int     `json:"watch_dte_at_most"`

	// Cache
	FreshnessWindow time.Duration `json:"freshness_window"`

	// Batch
	MaxConcurrentRefreshes int           `json:"max_concurrent_refreshes"`
	BatchTimeout           time.Duration `json:"batch_timeout"`
}

// DefaultMonitorConfig returns the reference monitoring policy
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		ProfitTargetPct:  50,
		StopLossPct:      200,
		ProfitWarningPct: 30,

		NewsVolumeThreshold: 10,
		DTEWarn:             7,
		DTECritical:         3,
		StrikeProximityWarn: 0.05,
		StrikeProximityCrit: 0.02,

		WatchIPSScoreBelow: 75,
		WatchDTEAtMost:     14,

		FreshnessWindow: 24 * time.Hour,

		MaxConcurrentRefreshes: 4,
		BatchTimeout:           2 * time.Minute,
	}
}
