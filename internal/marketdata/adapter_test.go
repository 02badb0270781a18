package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
	"github.com/vantage-labs/vantage/pkg/redis"
)

func pf(v float64) *float64 { return &v }

type fakeChainMarket struct {
	price float64
	chain []contracts.OptionContract
}

func (m *fakeChainMarket) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	return &contracts.Quote{Symbol: symbol, Price: m.price, AsOf: time.Now()}, nil
}

func (m *fakeChainMarket) GetChain(ctx context.Context, symbol string) ([]contracts.OptionContract, error) {
	return m.chain, nil
}

func (m *fakeChainMarket) GetFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	return &contracts.Fundamentals{Symbol: symbol}, nil
}

func sideContract(side contracts.OptionSide, strike float64, expiration time.Time, bid, ask float64) contracts.OptionContract {
	return contracts.OptionContract{
		Symbol:     "AAPL",
		Strike:     strike,
		Expiration: expiration,
		Side:       side,
		Bid:        pf(bid),
		Ask:        pf(ask),
	}
}

// Both sides listed at every strike; mids differ so a wrong-side match is visible
func mixedSideAdapter(expiration time.Time) *Adapter {
	market := &fakeChainMarket{
		price: 150,
		chain: []contracts.OptionContract{
			sideContract(contracts.SideCall, 160, expiration, 3.00, 3.20),
			sideContract(contracts.SidePut, 160, expiration, 11.00, 11.40),
			sideContract(contracts.SideCall, 165, expiration, 1.40, 1.60),
			sideContract(contracts.SidePut, 165, expiration, 15.00, 15.40),
			sideContract(contracts.SideCall, 145, expiration, 7.80, 8.20),
			sideContract(contracts.SidePut, 145, expiration, 2.40, 2.60),
			sideContract(contracts.SideCall, 140, expiration, 11.00, 11.40),
			sideContract(contracts.SidePut, 140, expiration, 1.40, 1.60),
		},
	}
	cache := redis.NewCache(&redis.Client{}, "test")
	return NewAdapter(market, market, market, cache, logger.NewNop())
}

func TestGetSpreadQuote_CallSpreadUsesCallLegs(t *testing.T) {
	exp := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	adapter := mixedSideAdapter(exp)

	pos := &contracts.ActivePosition{
		ID:          "pos-1",
		Symbol:      "AAPL",
		Strategy:    contracts.StrategyCallCredit,
		Expiration:  exp,
		ShortStrike: 160,
		LongStrike:  165,
	}

	shortMid, longMid, underlying, err := adapter.GetSpreadQuote(context.Background(), pos)
	require.NoError(t, err)

	assert.InDelta(t, 3.10, shortMid, 0.0001)
	assert.InDelta(t, 1.50, longMid, 0.0001)
	assert.Equal(t, 150.0, underlying)
}

func TestGetSpreadQuote_PutSpreadUsesPutLegs(t *testing.T) {
	exp := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	adapter := mixedSideAdapter(exp)

	pos := &contracts.ActivePosition{
		ID:          "pos-2",
		Symbol:      "AAPL",
		Strategy:    contracts.StrategyPutCredit,
		Expiration:  exp,
		ShortStrike: 145,
		LongStrike:  140,
	}

	shortMid, longMid, _, err := adapter.GetSpreadQuote(context.Background(), pos)
	require.NoError(t, err)

	assert.InDelta(t, 2.50, shortMid, 0.0001)
	assert.InDelta(t, 1.50, longMid, 0.0001)
}

func TestGetSpreadQuote_MissingLeg(t *testing.T) {
	exp := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	adapter := mixedSideAdapter(exp)

	pos := &contracts.ActivePosition{
		ID:          "pos-3",
		Symbol:      "AAPL",
		Strategy:    contracts.StrategyPutCredit,
		Expiration:  exp,
		ShortStrike: 125, // not listed
		LongStrike:  120,
	}

	_, _, _, err := adapter.GetSpreadQuote(context.Background(), pos)
	assert.ErrorContains(t, err, "missing leg quotes")
}
