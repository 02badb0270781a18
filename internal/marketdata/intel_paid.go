package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/httputil"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// PaidIntelProvider serves category-specific intelligence from a metered API
type PaidIntelProvider struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewPaidIntelProvider creates the paid-tier provider
func NewPaidIntelProvider(http *httputil.Client, baseURL, apiKey string, log *logger.Logger) *PaidIntelProvider {
	return &PaidIntelProvider{
		http:    http,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log,
	}
}

// Source identifies this provider as a paid origin
func (p *PaidIntelProvider) Source() contracts.SourceType {
	return contracts.SourcePaid
}

// Configured reports whether the paid tier is usable
func (p *PaidIntelProvider) Configured() bool {
	return p.baseURL != "" && p.apiKey != ""
}

type paidIntelResponse struct {
	Results []struct {
		Title       string  `json:"title"`
		Snippet     string  `json:"snippet"`
		URL         string  `json:"url"`
		PublishedAt int64   `json:"published_at"`
		Score       float64 `json:"relevance_score"`
	} `json:"results"`
}

// Fetch retrieves one category for a symbol from the metered API
func (p *PaidIntelProvider) Fetch(ctx context.Context, category contracts.IntelCategory, symbol string, lookbackDays int) ([]contracts.IntelItem, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("paid intel provider not configured")
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("category", string(category))
	q.Set("lookback_days", fmt.Sprintf("%d", lookbackDays))

	endpoint := fmt.Sprintf("%s/v2/intel?%s", p.baseURL, q.Encode())

	var resp paidIntelResponse
	err := p.http.GetJSON(ctx, endpoint, map[string]string{
		"X-Api-Key": p.apiKey,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("paid intel fetch %s/%s: %w", symbol, category, err)
	}

	items := make([]contracts.IntelItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, contracts.IntelItem{
			Title:       r.Title,
			Snippet:     r.Snippet,
			URL:         r.URL,
			PublishedAt: time.Unix(r.PublishedAt, 0).UTC(),
			Score:       r.Score,
			Source:      contracts.SourcePaid,
		})
	}

	return items, nil
}
