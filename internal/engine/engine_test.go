package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/internal/generator"
	"github.com/vantage-labs/vantage/internal/ips"
	"github.com/vantage-labs/vantage/internal/marketdata"
	"github.com/vantage-labs/vantage/internal/ranking"
	"github.com/vantage-labs/vantage/internal/scoring"
	"github.com/vantage-labs/vantage/pkg/logger"
	"github.com/vantage-labs/vantage/pkg/redis"
)

func f(v float64) *float64 { return &v }

// fakeMarket serves a fixed chain for one symbol
type fakeMarket struct {
	chain []contracts.OptionContract
}

func (m *fakeMarket) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	return &contracts.Quote{Symbol: symbol, Price: 150, AsOf: time.Now()}, nil
}

func (m *fakeMarket) GetChain(ctx context.Context, symbol string) ([]contracts.OptionContract, error) {
	return m.chain, nil
}

func (m *fakeMarket) GetFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	return &contracts.Fundamentals{Symbol: symbol, Sector: "Technology"}, nil
}

type fakeTechnicals struct{}

func (fakeTechnicals) GetIndicator(ctx context.Context, symbol, indicator string, params map[string]string) (*contracts.TechnicalValue, error) {
	return nil, fmt.Errorf("indicator %s unavailable", indicator)
}

type fakeIPSRepo struct {
	cfg *contracts.IPSConfig
}

func (r *fakeIPSRepo) GetIPS(ctx context.Context, ipsID string) (*contracts.IPSConfig, error) {
	return r.cfg, nil
}

func testPut(strike float64, expiration time.Time, bid, ask *float64, delta float64) contracts.OptionContract {
	return contracts.OptionContract{
		Symbol:     "AAPL",
		Strike:     strike,
		Expiration: expiration,
		Side:       contracts.SidePut,
		Bid:        bid,
		Ask:        ask,
		Delta:      delta,
	}
}

func newTestEngine() *Engine {
	exp := time.Now().UTC().AddDate(0, 0, 30)
	market := &fakeMarket{
		chain: []contracts.OptionContract{
			testPut(145, exp, f(2.40), f(2.60), -0.30),
			testPut(140, exp, f(1.40), f(1.60), -0.20),
			testPut(135, exp, f(0.90), f(1.10), -0.12),
			testPut(130, exp, f(0.50), f(0.70), -0.08),
		},
	}

	log := logger.NewNop()
	cache := redis.NewCache(&redis.Client{}, "test")
	adapter := marketdata.NewAdapter(market, market, market, cache, log)

	ipsRepo := &fakeIPSRepo{
		cfg: &contracts.IPSConfig{
			ID:   "default",
			Name: "Default",
			Factors: []contracts.FactorDefinition{
				{Key: "pop", Weight: 1, Direction: contracts.DirectionAtLeast, Threshold: f(0.5), Enabled: true},
			},
		},
	}

	return New(
		adapter,
		fakeTechnicals{},
		generator.New(contracts.DefaultGeneratorConfig(), log),
		scoring.New(scoring.DefaultYieldWeights(), log),
		ips.NewEvaluator(ips.DefaultRegistry(), contracts.DefaultScoringPolicy(), log),
		ipsRepo,
		ranking.NewRanker(ranking.DefaultTopN, log),
		ranking.NewDiversifier(ranking.DefaultDiversifyConfig(), log),
		log,
	)
}

func TestScan_ViewsRankFullScoredPool(t *testing.T) {
	eng := newTestEngine()

	result, err := eng.Scan(context.Background(), "AAPL", "default")
	require.NoError(t, err)

	// One symbol, four accepted strikes: more candidates than the
	// per-symbol concentration cap allows into the short-list
	maxPerSymbol := ranking.DefaultDiversifyConfig().MaxPerSymbol
	require.Greater(t, len(result.Scored), maxPerSymbol)

	assert.Len(t, result.Views.ByComposite, len(result.Scored))
	assert.Len(t, result.Views.ByIPS, len(result.Scored))
	assert.Len(t, result.Views.ByYield, len(result.Scored))
	assert.Len(t, result.Views.ByEVPerDollar, len(result.Scored))

	for i := 1; i < len(result.Views.ByComposite); i++ {
		assert.GreaterOrEqual(t,
			result.Views.ByComposite[i-1].CompositeScore,
			result.Views.ByComposite[i].CompositeScore)
	}
}

func TestScan_DiversifiedShortListIsSeparate(t *testing.T) {
	eng := newTestEngine()

	result, err := eng.Scan(context.Background(), "AAPL", "default")
	require.NoError(t, err)

	cfg := ranking.DefaultDiversifyConfig()
	require.Greater(t, len(result.Scored), cfg.MaxPerSymbol)

	// Caps bind the short-list but never the views
	assert.Len(t, result.Diversified, cfg.MaxPerSymbol)
	assert.Greater(t, len(result.Views.ByComposite), len(result.Diversified))

	// The short-list walks the composite order, so its head is the
	// composite view's head
	require.NotEmpty(t, result.Diversified)
	assert.Equal(t,
		result.Views.ByComposite[0].CompositeScore,
		result.Diversified[0].CompositeScore)

	for i := 1; i < len(result.Diversified); i++ {
		assert.GreaterOrEqual(t,
			result.Diversified[i-1].CompositeScore,
			result.Diversified[i].CompositeScore)
	}
}
