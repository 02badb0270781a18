package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
	"github.com/vantage-labs/vantage/pkg/redis"
)

// Adapter normalizes chain, quote, and fundamental data into the shapes the
// engine consumes. Quotes and chains are cached; fundamentals degrade to nil
// on failure rather than aborting the snapshot.
type Adapter struct {
	quotes       contracts.QuoteProvider
	chains       contracts.ChainProvider
	fundamentals contracts.FundamentalsProvider
	cache        *redis.Cache
	logger       *logger.Logger
}

// NewAdapter creates a new market snapshot adapter
func NewAdapter(
	quotes contracts.QuoteProvider,
	chains contracts.ChainProvider,
	fundamentals contracts.FundamentalsProvider,
	cache *redis.Cache,
	log *logger.Logger,
) *Adapter {
	return &Adapter{
		quotes:       quotes,
		chains:       chains,
		fundamentals: fundamentals,
		cache:        cache,
		logger:       log,
	}
}

// GetSnapshot builds a normalized per-symbol view. A missing quote or chain
// is fatal to the snapshot; missing fundamentals are not.
func (a *Adapter) GetSnapshot(ctx context.Context, symbol string, requireGreeks bool) (*contracts.MarketSnapshot, error) {
	quote, err := a.getQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot for %s: %w", symbol, err)
	}

	chain, err := a.getChain(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot for %s: %w", symbol, err)
	}

	if requireGreeks {
		chain = filterContractsWithGreeks(chain)
	}

	snap := &contracts.MarketSnapshot{
		Quote:     *quote,
		Chain:     chain,
		FetchedAt: time.Now(),
	}

	// Fundamentals are best-effort
	fund, err := a.fundamentals.GetFundamentals(ctx, symbol)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Fundamentals unavailable, continuing without")
	} else {
		snap.Fundamentals = fund
	}

	return snap, nil
}

// GetSpreadQuote returns current mid prices for the two legs of an open spread.
// Returns an error when either leg has no usable quote.
func (a *Adapter) GetSpreadQuote(ctx context.Context, pos *contracts.ActivePosition) (shortMid, longMid, underlying float64, err error) {
	quote, err := a.getQuote(ctx, pos.Symbol)
	if err != nil {
		return 0, 0, 0, err
	}

	chain, err := a.getChain(ctx, pos.Symbol)
	if err != nil {
		return 0, 0, 0, err
	}

	side := contracts.StrategySide(pos.Strategy)

	var haveShort, haveLong bool
	for i := range chain {
		c := &chain[i]
		if !c.Expiration.Equal(pos.Expiration) || c.Side != side {
			continue
		}
		if mid, ok := c.Mid(); ok {
			switch c.Strike {
			case pos.ShortStrike:
				shortMid, haveShort = mid, true
			case pos.LongStrike:
				longMid, haveLong = mid, true
			}
		}
	}

	if !haveShort || !haveLong {
		return 0, 0, 0, fmt.Errorf("missing leg quotes for position %s (%s %g/%g)",
			pos.ID, pos.Symbol, pos.ShortStrike, pos.LongStrike)
	}

	return shortMid, longMid, quote.Price, nil
}

func (a *Adapter) getQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	key := redis.QuoteKey(symbol)

	var cached contracts.Quote
	if found, _ := a.cache.Get(ctx, key, &cached); found {
		return &cached, nil
	}

	quote, err := a.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(ctx, key, quote, redis.TTLShort); err != nil {
		a.logger.WithError(err).Warn("Quote cache write failed")
	}

	return quote, nil
}

func (a *Adapter) getChain(ctx context.Context, symbol string) ([]contracts.OptionContract, error) {
	key := redis.ChainKey(symbol)

	var cached []contracts.OptionContract
	if found, _ := a.cache.Get(ctx, key, &cached); found && len(cached) > 0 {
		return cached, nil
	}

	chain, err := a.chains.GetChain(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(ctx, key, chain, redis.TTLMedium); err != nil {
		a.logger.WithError(err).Warn("Chain cache write failed")
	}

	return chain, nil
}

// filterContractsWithGreeks drops contracts lacking a delta, which the
// generator needs for PoP estimation
func filterContractsWithGreeks(chain []contracts.OptionContract) []contracts.OptionContract {
	out := make([]contracts.OptionContract, 0, len(chain))
	for _, c := range chain {
		if c.Delta != 0 {
			out = append(out, c)
		}
	}
	return out
}
