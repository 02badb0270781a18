package contracts

import (
	"context"
	"time"
)

// QuoteProvider resolves a symbol to its current price
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// ChainProvider resolves a symbol to its options chain
type ChainProvider interface {
	GetChain(ctx context.Context, symbol string) ([]OptionContract, error)
}

// FundamentalsProvider resolves a symbol to its fundamental metrics
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
}

// TechnicalProvider resolves a symbol + indicator to a single value
type TechnicalProvider interface {
	GetIndicator(ctx context.Context, symbol, indicator string, params map[string]string) (*TechnicalValue, error)
}

// IntelProvider serves one intelligence category from a single origin
type IntelProvider interface {
	Fetch(ctx context.Context, category IntelCategory, symbol string, lookbackDays int) ([]IntelItem, error)
	Source() SourceType
}

// IPSRepository loads factor sets by id
type IPSRepository interface {
	GetIPS(ctx context.Context, ipsID string) (*IPSConfig, error)
}

// PositionRepository stores and loads open positions
type PositionRepository interface {
	GetActive(ctx context.Context) ([]ActivePosition, error)
	GetByID(ctx context.Context, id string) (*ActivePosition, error)
	UpdateLive(ctx context.Context, pos *ActivePosition) error
}

// MonitorResultRepository persists append-only monitoring snapshots
type MonitorResultRepository interface {
	Append(ctx context.Context, result *MonitorResult) error
	GetLatest(ctx context.Context, positionID string) (*MonitorResult, error)
	GetHistory(ctx context.Context, positionID string, since time.Time) ([]MonitorResult, error)
}

// AlertNotifier delivers exit and escalation alerts to collaborators
type AlertNotifier interface {
	NotifyResult(ctx context.Context, result *MonitorResult) error
}
