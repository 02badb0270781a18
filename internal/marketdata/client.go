package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/config"
	"github.com/vantage-labs/vantage/pkg/httputil"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Client talks to the market data API for quotes, chains, fundamentals,
// and technical indicators
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates a new market data client
func NewClient(cfg *config.Config, http *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: cfg.Market.BaseURL,
		apiKey:  cfg.Market.APIKey,
		logger:  log,
	}
}

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	AsOf   int64   `json:"updated"`
}

// GetQuote returns the current underlying price for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	endpoint := fmt.Sprintf("%s/v1/stocks/quotes/%s/", c.baseURL, url.PathEscape(symbol))

	var resp quoteResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("quote fetch for %s: %w", symbol, err)
	}

	if resp.Last <= 0 {
		return nil, fmt.Errorf("quote fetch for %s: no price in response", symbol)
	}

	return &contracts.Quote{
		Symbol: symbol,
		Price:  resp.Last,
		AsOf:   time.Unix(resp.AsOf, 0),
	}, nil
}

type chainResponse struct {
	Options []struct {
		Strike       float64  `json:"strike"`
		Expiration   int64    `json:"expiration"`
		Side         string   `json:"side"`
		Bid          *float64 `json:"bid"`
		Ask          *float64 `json:"ask"`
		Delta        float64  `json:"delta"`
		Gamma        float64  `json:"gamma"`
		Theta        float64  `json:"theta"`
		Vega         float64  `json:"vega"`
		IV           float64  `json:"iv"`
		OpenInterest int64    `json:"open_interest"`
		Volume       int64    `json:"volume"`
	} `json:"options"`
}

// GetChain returns the full options chain for a symbol
func (c *Client) GetChain(ctx context.Context, symbol string) ([]contracts.OptionContract, error) {
	endpoint := fmt.Sprintf("%s/v1/options/chain/%s/", c.baseURL, url.PathEscape(symbol))

	var resp chainResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("chain fetch for %s: %w", symbol, err)
	}

	chain := make([]contracts.OptionContract, 0, len(resp.Options))
	for _, o := range resp.Options {
		side := contracts.SidePut
		if o.Side == "call" {
			side = contracts.SideCall
		}

		chain = append(chain, contracts.OptionContract{
			Symbol:       symbol,
			Strike:       o.Strike,
			Expiration:   time.Unix(o.Expiration, 0).UTC(),
			Side:         side,
			Bid:          o.Bid,
			Ask:          o.Ask,
			Delta:        o.Delta,
			Gamma:        o.Gamma,
			Theta:        o.Theta,
			Vega:         o.Vega,
			ImpliedVol:   o.IV,
			OpenInterest: o.OpenInterest,
			Volume:       o.Volume,
		})
	}

	return chain, nil
}

type fundamentalsResponse struct {
	Sector  string              `json:"sector"`
	Metrics map[string]*float64 `json:"metrics"`
}

// GetFundamentals returns named fundamental metrics for a symbol, all nullable
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	endpoint := fmt.Sprintf("%s/v1/stocks/fundamentals/%s/", c.baseURL, url.PathEscape(symbol))

	var resp fundamentalsResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("fundamentals fetch for %s: %w", symbol, err)
	}

	return &contracts.Fundamentals{
		Symbol:  symbol,
		Sector:  resp.Sector,
		Metrics: resp.Metrics,
	}, nil
}

type indicatorResponse struct {
	Value float64 `json:"value"`
	AsOf  int64   `json:"as_of"`
}

// GetIndicator returns a single technical indicator value
func (c *Client) GetIndicator(ctx context.Context, symbol, indicator string, params map[string]string) (*contracts.TechnicalValue, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/v1/indicators/%s/%s/?%s",
		c.baseURL, url.PathEscape(indicator), url.PathEscape(symbol), q.Encode())

	var resp indicatorResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("indicator %s fetch for %s: %w", indicator, symbol, err)
	}

	return &contracts.TechnicalValue{
		Symbol:    symbol,
		Indicator: indicator,
		Value:     resp.Value,
		AsOf:      time.Unix(resp.AsOf, 0),
	}, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}
}
