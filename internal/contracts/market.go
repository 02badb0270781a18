package contracts

import "time"

// OptionSide distinguishes puts from calls
type OptionSide string

const (
	SidePut  OptionSide = "put"
	SideCall OptionSide = "call"
)

// OptionContract is an immutable snapshot of a single listed contract,
// one per (symbol, strike, expiration, side) per fetch
type OptionContract struct {
	Symbol     string     `json:"symbol"`
	Strike     float64    `json:"strike"`
	Expiration time.Time  `json:"expiration"`
	Side       OptionSide `json:"side"`

	Bid *float64 `json:"bid"`
	Ask *float64 `json:"ask"`

	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Theta      float64 `json:"theta"`
	Vega       float64 `json:"vega"`
	ImpliedVol float64 `json:"implied_vol"`

	OpenInterest int64 `json:"open_interest"`
	Volume       int64 `json:"volume"`
}

// Mid returns the bid/ask midpoint, or false when either side is missing
func (o *OptionContract) Mid() (float64, bool) {
	if o.Bid == nil || o.Ask == nil {
		return 0, false
	}
	return (*o.Bid + *o.Ask) / 2, true
}

// Quote is a point-in-time underlying price
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// Fundamentals is a map of named metrics for a symbol, all nullable
// (52-week high/low, market cap, analyst target, sector, ...)
type Fundamentals struct {
	Symbol  string              `json:"symbol"`
	Sector  string              `json:"sector"`
	Metrics map[string]*float64 `json:"metrics"`
}

// Metric returns a named fundamental metric, nil when unknown
func (f *Fundamentals) Metric(name string) *float64 {
	if f == nil || f.Metrics == nil {
		return nil
	}
	return f.Metrics[name]
}

// TechnicalValue is a single computed indicator value
type TechnicalValue struct {
	Symbol    string    `json:"symbol"`
	Indicator string    `json:"indicator"`
	Value     float64   `json:"value"`
	AsOf      time.Time `json:"as_of"`
}

// SourceType distinguishes free vs. paid intelligence origins for cost accounting
type SourceType string

const (
	SourceFree SourceType = "free"
	SourcePaid SourceType = "paid"
)

// IntelCategory identifies an intelligence feed
type IntelCategory string

const (
	IntelCatalysts   IntelCategory = "catalysts"
	IntelAnalyst     IntelCategory = "analyst"
	IntelFilings     IntelCategory = "filings"
	IntelOperational IntelCategory = "operational"
	IntelNews        IntelCategory = "news"
)

// AllIntelCategories lists every feed the monitor fans out to
var AllIntelCategories = []IntelCategory{
	IntelCatalysts,
	IntelAnalyst,
	IntelFilings,
	IntelOperational,
	IntelNews,
}

// IntelItem is a single intelligence feed entry
type IntelItem struct {
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"published_at"`
	Score       float64    `json:"score"`
	Source      SourceType `json:"source"`
}

// IntelBundle holds the joined per-category fetch results for one position,
// plus the cost consumed obtaining them. Categories whose fetch failed are
// present with a nil slice and counted in Degraded.
type IntelBundle struct {
	Items     map[IntelCategory][]IntelItem `json:"items"`
	PaidCalls int                           `json:"paid_calls"`
	Degraded  []IntelCategory               `json:"degraded,omitempty"`
}

// MarketSnapshot is the normalized per-symbol view the engine consumes
type MarketSnapshot struct {
	Quote        Quote           `json:"quote"`
	Chain        []OptionContract `json:"chain"`
	Fundamentals *Fundamentals   `json:"fundamentals,omitempty"`
	FetchedAt    time.Time       `json:"fetched_at"`
}
