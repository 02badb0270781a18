package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/httputil"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// fakeFreeProvider is a scripted free source
type fakeFreeProvider struct {
	items []contracts.IntelItem
	err   error
	calls int
}

func (f *fakeFreeProvider) Fetch(ctx context.Context, category contracts.IntelCategory, symbol string, lookbackDays int) ([]contracts.IntelItem, error) {
	f.calls++
	return f.items, f.err
}

func (f *fakeFreeProvider) Source() contracts.SourceType {
	return contracts.SourceFree
}

func TestFetchCategory_FreeHitSkipsPaid(t *testing.T) {
	free := &fakeFreeProvider{items: []contracts.IntelItem{{Title: "headline"}}}
	client := NewLayeredIntelClient(free, nil, 60, logger.NewNop())

	items, paidCalls, err := client.FetchCategory(context.Background(), contracts.IntelNews, "AAPL", 14)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, paidCalls)
	assert.Equal(t, 1, free.calls)
}

func TestFetchCategory_EmptyFreeIsValidWithoutPaid(t *testing.T) {
	free := &fakeFreeProvider{}
	client := NewLayeredIntelClient(free, nil, 60, logger.NewNop())

	items, paidCalls, err := client.FetchCategory(context.Background(), contracts.IntelNews, "AAPL", 14)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, paidCalls)
}

func TestFetchCategory_FreeErrorWithoutPaidFails(t *testing.T) {
	free := &fakeFreeProvider{err: errors.New("scrape blocked")}
	client := NewLayeredIntelClient(free, nil, 60, logger.NewNop())

	_, paidCalls, err := client.FetchCategory(context.Background(), contracts.IntelNews, "AAPL", 14)

	assert.Error(t, err)
	assert.Zero(t, paidCalls)
}

func TestFetchCategory_FallsBackToPaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"paid item","relevance_score":0.9,"published_at":1767312000}]}`))
	}))
	defer server.Close()

	free := &fakeFreeProvider{err: errors.New("scrape blocked")}
	paid := NewPaidIntelProvider(httputil.New(logger.NewNop()), server.URL, "test-key", logger.NewNop())
	client := NewLayeredIntelClient(free, paid, 60, logger.NewNop())

	items, paidCalls, err := client.FetchCategory(context.Background(), contracts.IntelCatalysts, "AAPL", 14)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "paid item", items[0].Title)
	assert.Equal(t, contracts.SourcePaid, items[0].Source)
	assert.Equal(t, 1, paidCalls)
}

func TestFetchCategory_UnconfiguredPaidIgnored(t *testing.T) {
	free := &fakeFreeProvider{}
	paid := NewPaidIntelProvider(httputil.New(logger.NewNop()), "", "", logger.NewNop())
	client := NewLayeredIntelClient(free, paid, 60, logger.NewNop())

	items, paidCalls, err := client.FetchCategory(context.Background(), contracts.IntelNews, "AAPL", 14)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, paidCalls)
}
