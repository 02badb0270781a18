package contracts

import "time"

// SpreadLeg is one side of a two-leg vertical
type SpreadLeg struct {
	Strike     float64 `json:"strike"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Mid        float64 `json:"mid"`
	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Theta      float64 `json:"theta"`
	Vega       float64 `json:"vega"`
	ImpliedVol float64 `json:"implied_vol"`
}

// CandidateSpread is an enumerated two-leg credit spread.
// Never mutated after creation; width > 0 and credit > 0 by construction.
type CandidateSpread struct {
	Symbol     string    `json:"symbol"`
	Sector     string    `json:"sector"`
	Strategy   string    `json:"strategy"`
	Expiration time.Time `json:"expiration"`
	DTE        int       `json:"dte"`

	ShortLeg SpreadLeg `json:"short_leg"`
	LongLeg  SpreadLeg `json:"long_leg"`

	Width       float64 `json:"width"`        // short strike - long strike
	EntryCredit float64 `json:"entry_credit"` // short mid - long mid
	MaxProfit   float64 `json:"max_profit"`   // = entry credit
	MaxLoss     float64 `json:"max_loss"`     // = width - entry credit
	Breakeven   float64 `json:"breakeven"`
	PoP         float64 `json:"pop"`         // 1 - |short delta|
	RiskReward  float64 `json:"risk_reward"` // max profit / max loss
}

const (
	StrategyPutCredit  = "put_credit_spread"
	StrategyCallCredit = "call_credit_spread"
)

// StrategySide returns the option side of a credit spread strategy's legs
func StrategySide(strategy string) OptionSide {
	if strategy == StrategyCallCredit {
		return SideCall
	}
	return SidePut
}

// RejectReason is a typed reason a strike pair was not emitted as a candidate
type RejectReason string

const (
	RejectIndexOutOfRange RejectReason = "index_out_of_range"
	RejectNoQuote         RejectReason = "missing_bid_ask"
	RejectNonPositiveWidth RejectReason = "non_positive_width"
	RejectNonPositiveCredit RejectReason = "non_positive_credit"
	RejectLowRiskReward   RejectReason = "risk_reward_below_min"
)

// GenerationResult carries the accepted candidates plus rejection statistics
type GenerationResult struct {
	Candidates []CandidateSpread    `json:"candidates"`
	Examined   int                  `json:"examined"`
	Rejections map[RejectReason]int `json:"rejections"`
}

// GeneratorConfig bounds the enumeration pass
type GeneratorConfig struct {
	Side           OptionSide `json:"side"`
	MinDTE         int        `json:"min_dte"`
	MaxDTE         int        `json:"max_dte"`
	MaxExpirations int        `json:"max_expirations"`
	MaxStrikes     int        `json:"max_strikes"` // strikes examined per expiration
	Widths         []int      `json:"widths"`      // width in strike-index steps, not dollars
	MinRiskReward  float64    `json:"min_risk_reward"`
}

// DefaultGeneratorConfig returns the default enumeration bounds
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Side:           SidePut,
		MinDTE:         7,
		MaxDTE:         45,
		MaxExpirations: 4,
		MaxStrikes:     12,
		Widths:         []int{1, 2, 3},
		MinRiskReward:  0.05,
	}
}

// Tier buckets candidates by ips score
type Tier string

const (
	TierElite       Tier = "elite"
	TierQuality     Tier = "quality"
	TierSpeculative Tier = "speculative"
	TierNone        Tier = "none"
)

// TierFor derives the tier from an ips score. Pure function; tiers are
// never set directly.
func TierFor(ipsScore float64) Tier {
	switch {
	case ipsScore >= 90:
		return TierElite
	case ipsScore >= 75:
		return TierQuality
	case ipsScore >= 60:
		return TierSpeculative
	default:
		return TierNone
	}
}

// ScoredCandidate is a candidate with all downstream scores attached
type ScoredCandidate struct {
	CandidateSpread

	YieldScore     float64 `json:"yield_score"`     // 0-100
	EVPerDollar    float64 `json:"ev_per_dollar"`   // expected value per dollar risked
	IPSScore       float64 `json:"ips_score"`       // 0-100
	CompositeScore float64 `json:"composite_score"` // blend of yield and ips
	Tier           Tier    `json:"tier"`

	Factors []FactorEvaluationDetail `json:"factors"`
}
