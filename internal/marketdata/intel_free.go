package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/httputil"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// FreeIntelProvider scrapes a public finance site's news table for a symbol.
// All categories are served from the same headline stream; the layered
// client decides whether that is good enough or a paid fetch is needed.
type FreeIntelProvider struct {
	http    *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewFreeIntelProvider creates the free-tier provider
func NewFreeIntelProvider(http *httputil.Client, baseURL string, log *logger.Logger) *FreeIntelProvider {
	return &FreeIntelProvider{
		http:    http,
		baseURL: baseURL,
		logger:  log,
	}
}

// Source identifies this provider as a free origin
func (p *FreeIntelProvider) Source() contracts.SourceType {
	return contracts.SourceFree
}

// categoryTerms narrows the headline stream per category
var categoryTerms = map[contracts.IntelCategory][]string{
	contracts.IntelCatalysts:   {"earnings", "guidance", "outlook", "forecast", "dividend", "split"},
	contracts.IntelAnalyst:     {"upgrade", "downgrade", "initiate", "price target", "rating", "overweight", "underweight"},
	contracts.IntelFilings:     {"sec", "filing", "8-k", "10-q", "10-k", "prospectus", "proxy"},
	contracts.IntelOperational: {"recall", "lawsuit", "regulator", "investigation", "supply", "strike", "outage", "breach"},
	contracts.IntelNews:        nil, // everything
}

// Fetch scrapes the news table and filters rows to the requested category
func (p *FreeIntelProvider) Fetch(ctx context.Context, category contracts.IntelCategory, symbol string, lookbackDays int) ([]contracts.IntelItem, error) {
	pageURL := fmt.Sprintf("%s/quote.ashx?t=%s", p.baseURL, url.QueryEscape(symbol))

	resp, err := p.http.GetWithHeaders(ctx, pageURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("free intel fetch for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("free intel fetch for %s: status %d", symbol, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("free intel parse for %s: %w", symbol, err)
	}

	cutoff := time.Now().AddDate(0, 0, -lookbackDays)
	terms := categoryTerms[category]

	var items []contracts.IntelItem
	var lastDate time.Time

	doc.Find("table#news-table tr").Each(func(i int, row *goquery.Selection) {
		link := row.Find("a")
		if link.Length() == 0 {
			return
		}

		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" {
			return
		}

		// Date cell carries the date only on the first row of each day
		if published, ok := parseNewsTimestamp(row.Find("td").First().Text(), lastDate); ok {
			lastDate = published
		}
		if !lastDate.IsZero() && lastDate.Before(cutoff) {
			return
		}

		if terms != nil && !matchesAny(title, terms) {
			return
		}

		items = append(items, contracts.IntelItem{
			Title:       title,
			URL:         href,
			PublishedAt: lastDate,
			Source:      contracts.SourceFree,
		})
	})

	p.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"category": category,
		"items":    len(items),
	}).Debug("Free intel fetched")

	return items, nil
}

// parseNewsTimestamp handles the "Jan-02-06 03:04PM" and bare "03:04PM"
// cell formats; time-only rows inherit the running date
func parseNewsTimestamp(cell string, lastDate time.Time) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("Jan-02-06 03:04PM", cell); err == nil {
		return t, true
	}

	if t, err := time.Parse("03:04PM", cell); err == nil && !lastDate.IsZero() {
		return time.Date(lastDate.Year(), lastDate.Month(), lastDate.Day(),
			t.Hour(), t.Minute(), 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

func matchesAny(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
