package marketdata

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// LayeredIntelClient serves each intelligence category from the free source
// first and falls back to the paid source only on miss. Paid calls draw from
// a shared requests-per-minute budget; the limiter is the only shared mutable
// state across concurrent position refreshes.
type LayeredIntelClient struct {
	free    contracts.IntelProvider
	paid    *PaidIntelProvider
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewLayeredIntelClient creates the layered client.
// paidRPM is the shared paid-call budget per minute.
func NewLayeredIntelClient(free contracts.IntelProvider, paid *PaidIntelProvider, paidRPM int, log *logger.Logger) *LayeredIntelClient {
	return &LayeredIntelClient{
		free:    free,
		paid:    paid,
		limiter: rate.NewLimiter(rate.Limit(float64(paidRPM)/60.0), paidRPM),
		logger:  log,
	}
}

// FetchCategory returns the items for one category plus the paid calls consumed.
// A total failure returns an error; the caller degrades that category to empty.
func (c *LayeredIntelClient) FetchCategory(ctx context.Context, category contracts.IntelCategory, symbol string, lookbackDays int) ([]contracts.IntelItem, int, error) {
	items, err := c.free.Fetch(ctx, category, symbol, lookbackDays)
	if err == nil && len(items) > 0 {
		return items, 0, nil
	}

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol":   symbol,
			"category": category,
			"error":    err.Error(),
		}).Warn("Free intel source failed, trying paid")
	}

	if c.paid == nil || !c.paid.Configured() {
		if err != nil {
			return nil, 0, fmt.Errorf("intel category %s for %s: %w", category, symbol, err)
		}
		// Free source succeeded but had nothing; empty is a valid answer
		return items, 0, nil
	}

	// Paid call: wait for budget
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("paid intel budget wait: %w", err)
	}

	paidItems, paidErr := c.paid.Fetch(ctx, category, symbol, lookbackDays)
	if paidErr != nil {
		return nil, 1, fmt.Errorf("intel category %s for %s: %w", category, symbol, paidErr)
	}

	return paidItems, 1, nil
}
