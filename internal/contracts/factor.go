package contracts

// FactorDirection is the comparison applied between observed value and threshold
type FactorDirection string

const (
	DirectionAtLeast FactorDirection = "at_least"
	DirectionAtMost  FactorDirection = "at_most"
	DirectionEquals  FactorDirection = "equals"
	DirectionRange   FactorDirection = "range"
)

// FactorDefinition is one rule of an Investment Policy Statement.
// Supplied by configuration; read-only to the engine.
type FactorDefinition struct {
	Key          string          `json:"key"`
	DisplayName  string          `json:"display_name"`
	Weight       float64         `json:"weight"` // > 0
	Direction    FactorDirection `json:"direction"`
	Threshold    *float64        `json:"threshold"`     // nil means no constraint, auto-pass
	ThresholdMax *float64        `json:"threshold_max"` // range direction only
	Enabled      bool            `json:"enabled"`
}

// Severity grades how badly a factor missed its target
type Severity string

const (
	SeverityPass      Severity = "pass"
	SeverityMinorMiss Severity = "minor_miss"
	SeverityMajorMiss Severity = "major_miss"
)

// FactorEvaluationDetail is the per-factor outcome for one evaluated subject
type FactorEvaluationDetail struct {
	Key      string   `json:"key"`
	Observed *float64 `json:"observed"` // nil when the value could not be resolved
	Target   string   `json:"target"`
	Passed   bool     `json:"passed"`
	Weight   float64  `json:"weight"`
	Score    float64  `json:"score"` // 0-100 contribution before weighting
	Severity Severity `json:"severity"`
}

// IPSConfig is a named, weighted factor set plus the DTE bounds it implies
type IPSConfig struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Factors []FactorDefinition `json:"factors"`
	MinDTE  int                `json:"min_dte"`
	MaxDTE  int                `json:"max_dte"`
}

// EnabledFactors returns only the enabled factor definitions, in order
func (c *IPSConfig) EnabledFactors() []FactorDefinition {
	out := make([]FactorDefinition, 0, len(c.Factors))
	for _, f := range c.Factors {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// ScoringPolicy holds the policy constants behind factor and composite scoring.
// These encode business policy; override deliberately, not casually.
type ScoringPolicy struct {
	// Composite blend over yield and ips scores
	YieldWeight float64 `json:"yield_weight"`
	IPSWeight   float64 `json:"ips_weight"`

	// Severity grading: misses within MinorBand of the threshold (relative
	// distance) are minor; beyond MajorBand the score floors out
	MinorBand float64 `json:"minor_band"`
	MajorBand float64 `json:"major_band"`

	// Score anchors
	MinorMissCeiling float64 `json:"minor_miss_ceiling"` // 90
	MinorMissFloor   float64 `json:"minor_miss_floor"`   // 70
	MajorMissFloor   float64 `json:"major_miss_floor"`   // 30

	// Neutral score when no weight is enabled
	NeutralScore float64 `json:"neutral_score"`
}

// DefaultScoringPolicy returns the reference scoring constants
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		YieldWeight:      0.4,
		IPSWeight:        0.6,
		MinorBand:        0.10,
		MajorBand:        0.50,
		MinorMissCeiling: 90,
		MinorMissFloor:   70,
		MajorMissFloor:   30,
		NeutralScore:     50,
	}
}
