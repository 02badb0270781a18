package contracts

import "time"

// PositionStatus is the lifecycle state of an open trade
type PositionStatus string

const (
	StatusActive PositionStatus = "active"
	StatusClosed PositionStatus = "closed"
)

// ActivePosition is an open credit spread under monitoring.
// Live price and P/L fields are updated by the monitor; entry terms never change.
type ActivePosition struct {
	ID         string         `json:"id"`
	Symbol     string         `json:"symbol"`
	Strategy   string         `json:"strategy"`
	EntryDate  time.Time      `json:"entry_date"`
	Expiration time.Time      `json:"expiration"`

	ShortStrike    float64 `json:"short_strike"`
	LongStrike     float64 `json:"long_strike"`
	CreditReceived float64 `json:"credit_received"` // per spread, per share
	Contracts      int     `json:"contracts"`

	IPSScore float64        `json:"ips_score"` // last known
	Status   PositionStatus `json:"status"`

	// Live fields, monitor-owned
	CurrentPrice  float64   `json:"current_price"`
	SpreadPrice   float64   `json:"spread_price"` // current spread mid
	PLDollar      float64   `json:"pl_dollar"`
	PLPercent     float64   `json:"pl_percent"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// DTE returns whole days to expiration from now, floored at zero
func (p *ActivePosition) DTE(now time.Time) int {
	days := int(p.Expiration.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// StrikeProximity returns the distance from current price to the short strike
// as a fraction of the short strike (0.05 = within 5%)
func (p *ActivePosition) StrikeProximity() float64 {
	if p.ShortStrike == 0 {
		return 0
	}
	d := (p.CurrentPrice - p.ShortStrike) / p.ShortStrike
	if d < 0 {
		return -d
	}
	return d
}
