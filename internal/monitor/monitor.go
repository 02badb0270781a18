package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/internal/marketdata"
	"github.com/vantage-labs/vantage/pkg/logger"
	"github.com/vantage-labs/vantage/pkg/redis"
)

// Monitor runs the per-position refresh cycle: check cache freshness, fetch
// live quotes and intelligence, compute P/L and alerts, persist an immutable
// snapshot. Each position moves FRESH -> STALE -> REFRESHING -> EVALUATED;
// a position already REFRESHING is never re-entered.
type Monitor struct {
	market    *marketdata.Adapter
	intel     *marketdata.LayeredIntelClient
	positions contracts.PositionRepository
	results   contracts.MonitorResultRepository
	notifier  contracts.AlertNotifier
	cache     *redis.Cache
	cfg       contracts.MonitorConfig
	lookback  int
	log       *logger.Logger

	mu       sync.Mutex
	inflight map[string]bool // position ID -> refresh in progress
}

func New(
	market *marketdata.Adapter,
	intel *marketdata.LayeredIntelClient,
	positions contracts.PositionRepository,
	results contracts.MonitorResultRepository,
	notifier contracts.AlertNotifier,
	cache *redis.Cache,
	cfg contracts.MonitorConfig,
	lookbackDays int,
	log *logger.Logger,
) *Monitor {
	return &Monitor{
		market:    market,
		intel:     intel,
		positions: positions,
		results:   results,
		notifier:  notifier,
		cache:     cache,
		cfg:       cfg,
		lookback:  lookbackDays,
		inflight:  make(map[string]bool),
		log:       log,
	}
}

// State classifies a position's refresh state from its latest cached result
func (m *Monitor) State(ctx context.Context, positionID string) contracts.MonitorState {
	m.mu.Lock()
	busy := m.inflight[positionID]
	m.mu.Unlock()
	if busy {
		return contracts.MonitorRefreshing
	}

	if cached, ok := m.cachedResult(ctx, positionID); ok {
		if time.Since(cached.CreatedAt) < m.cfg.FreshnessWindow {
			return contracts.MonitorFresh
		}
		return contracts.MonitorStale
	}
	return contracts.MonitorStale
}

// Check runs one monitoring pass for a position. When force is false and a
// result inside the freshness window exists, the cached result is returned
// with FromCache set and no fetches are made. A concurrent refresh of the
// same position returns the last known result instead of doubling the work.
func (m *Monitor) Check(ctx context.Context, positionID string, force bool) (*contracts.MonitorResult, error) {
	if !force {
		if cached, ok := m.cachedResult(ctx, positionID); ok &&
			time.Since(cached.CreatedAt) < m.cfg.FreshnessWindow {
			cached.FromCache = true
			return cached, nil
		}
	}

	m.mu.Lock()
	if m.inflight[positionID] {
		m.mu.Unlock()
		m.log.WithField("position_id", positionID).Debug("refresh already in flight")
		if cached, ok := m.cachedResult(ctx, positionID); ok {
			cached.FromCache = true
			return cached, nil
		}
		return nil, fmt.Errorf("position %s: refresh in progress", positionID)
	}
	m.inflight[positionID] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inflight, positionID)
		m.mu.Unlock()
	}()

	pos, err := m.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("load position %s: %w", positionID, err)
	}

	return m.refresh(ctx, pos)
}

// refresh performs the live evaluation of one position
func (m *Monitor) refresh(ctx context.Context, pos *contracts.ActivePosition) (*contracts.MonitorResult, error) {
	now := time.Now().UTC()

	shortMid, longMid, underlying, err := m.market.GetSpreadQuote(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("spread quote %s: %w", pos.Symbol, err)
	}
	pos.CurrentPrice = underlying

	bundle := m.fetchIntel(ctx, pos.Symbol)

	pl := ComputePL(pos.CreditReceived, shortMid, longMid, pos.Contracts, m.cfg)
	dte := pos.DTE(now)
	alerts := BuildAlerts(pos, dte, bundle, m.cfg)
	riskLevel := OverallRiskLevel(alerts)

	result := &contracts.MonitorResult{
		ID:              uuid.New().String(),
		PositionID:      pos.ID,
		Symbol:          pos.Symbol,
		CreatedAt:       now,
		DaysHeld:        daysHeld(pos.EntryDate, now),
		DTE:             dte,
		PL:              pl,
		Alerts:          alerts,
		RiskLevel:       riskLevel,
		Recommendations: Recommend(pl, alerts, dte),
		PaidCalls:       bundle.PaidCalls,
		Degraded:        len(bundle.Degraded) > 0,
	}

	if err := m.results.Append(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result %s: %w", pos.ID, err)
	}

	if err := m.cache.Set(ctx, redis.MonitorResultKey(pos.ID), result, redis.TTLDaily); err != nil {
		m.log.WithFields(map[string]interface{}{
			"position_id": pos.ID,
			"error":       err.Error(),
		}).Warn("monitor cache write failed")
	}

	pos.SpreadPrice = pl.SpreadMid
	pos.PLDollar = pl.PLDollar
	pos.PLPercent = pl.PLPercent
	pos.LastCheckedAt = now
	if err := m.positions.UpdateLive(ctx, pos); err != nil {
		m.log.WithFields(map[string]interface{}{
			"position_id": pos.ID,
			"error":       err.Error(),
		}).Warn("live position update failed")
	}

	if m.notifier != nil && (pl.ShouldExit || riskLevel.AtLeast(contracts.RiskHigh)) {
		if err := m.notifier.NotifyResult(ctx, result); err != nil {
			m.log.WithFields(map[string]interface{}{
				"position_id": pos.ID,
				"error":       err.Error(),
			}).Warn("alert delivery failed")
		}
	}

	m.log.WithFields(map[string]interface{}{
		"position_id": pos.ID,
		"symbol":      pos.Symbol,
		"pl_percent":  pl.PLPercent,
		"risk_level":  string(riskLevel),
		"alerts":      len(alerts),
		"paid_calls":  bundle.PaidCalls,
	}).Info("position evaluated")

	return result, nil
}

// fetchIntel gathers all intelligence categories concurrently. A failed
// category degrades the bundle rather than failing the pass.
func (m *Monitor) fetchIntel(ctx context.Context, symbol string) *contracts.IntelBundle {
	bundle := &contracts.IntelBundle{
		Items: make(map[contracts.IntelCategory][]contracts.IntelItem, len(contracts.AllIntelCategories)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, category := range contracts.AllIntelCategories {
		wg.Add(1)
		go func(cat contracts.IntelCategory) {
			defer wg.Done()

			items, paidCalls, err := m.intel.FetchCategory(ctx, cat, symbol, m.lookback)

			mu.Lock()
			defer mu.Unlock()
			bundle.PaidCalls += paidCalls
			if err != nil {
				bundle.Degraded = append(bundle.Degraded, cat)
				m.log.WithFields(map[string]interface{}{
					"symbol":   symbol,
					"category": string(cat),
					"error":    err.Error(),
				}).Warn("intel category degraded")
				return
			}
			bundle.Items[cat] = items
		}(category)
	}
	wg.Wait()

	return bundle
}

// BatchResult summarizes one full monitoring sweep
type BatchResult struct {
	Checked   int
	Failed    int
	Exits     int
	PaidCalls int
	Elapsed   time.Duration
}

// CheckAll refreshes every active position, bounded by the configured
// concurrency and batch timeout. Per-position failures are logged and
// counted; one bad position never aborts the sweep. When watchOnly is set,
// only positions in the watch set are refreshed.
func (m *Monitor) CheckAll(ctx context.Context, watchOnly, force bool) (*BatchResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.BatchTimeout)
	defer cancel()

	active, err := m.positions.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active positions: %w", err)
	}

	targets := make([]*contracts.ActivePosition, 0, len(active))
	for i := range active {
		targets = append(targets, &active[i])
	}
	if watchOnly {
		targets = FilterWatchSet(targets, m.latestResults(ctx, targets), time.Now().UTC(), m.cfg)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		batch BatchResult
	)
	sem := make(chan struct{}, m.cfg.MaxConcurrentRefreshes)

	for _, pos := range targets {
		wg.Add(1)
		go func(p *contracts.ActivePosition) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				batch.Failed++
				mu.Unlock()
				return
			}

			result, err := m.Check(ctx, p.ID, force)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failed++
				m.log.WithFields(map[string]interface{}{
					"position_id": p.ID,
					"symbol":      p.Symbol,
					"error":       err.Error(),
				}).Error("position check failed")
				return
			}
			batch.Checked++
			batch.PaidCalls += result.PaidCalls
			if result.PL.ShouldExit {
				batch.Exits++
			}
		}(pos)
	}
	wg.Wait()

	batch.Elapsed = time.Since(start)
	m.log.WithFields(map[string]interface{}{
		"checked":    batch.Checked,
		"failed":     batch.Failed,
		"exits":      batch.Exits,
		"paid_calls": batch.PaidCalls,
		"elapsed_ms": batch.Elapsed.Milliseconds(),
	}).Info("monitoring sweep complete")

	return &batch, nil
}

// cachedResult loads the latest snapshot, preferring redis over the store
func (m *Monitor) cachedResult(ctx context.Context, positionID string) (*contracts.MonitorResult, bool) {
	var cached contracts.MonitorResult
	if ok, err := m.cache.Get(ctx, redis.MonitorResultKey(positionID), &cached); err == nil && ok {
		return &cached, true
	}

	latest, err := m.results.GetLatest(ctx, positionID)
	if err != nil || latest == nil {
		return nil, false
	}
	return latest, true
}

func (m *Monitor) latestResults(ctx context.Context, positions []*contracts.ActivePosition) map[string]*contracts.MonitorResult {
	latest := make(map[string]*contracts.MonitorResult, len(positions))
	for _, pos := range positions {
		if r, ok := m.cachedResult(ctx, pos.ID); ok {
			latest[pos.ID] = r
		}
	}
	return latest
}

func daysHeld(entry, now time.Time) int {
	days := int(now.Sub(entry).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
