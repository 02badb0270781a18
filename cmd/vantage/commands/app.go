package commands

import (
	"fmt"

	"github.com/vantage-labs/vantage/internal/alerts"
	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/internal/engine"
	"github.com/vantage-labs/vantage/internal/generator"
	"github.com/vantage-labs/vantage/internal/ips"
	"github.com/vantage-labs/vantage/internal/marketdata"
	"github.com/vantage-labs/vantage/internal/monitor"
	"github.com/vantage-labs/vantage/internal/ranking"
	"github.com/vantage-labs/vantage/internal/scoring"
	"github.com/vantage-labs/vantage/pkg/config"
	"github.com/vantage-labs/vantage/pkg/database"
	"github.com/vantage-labs/vantage/pkg/httputil"
	"github.com/vantage-labs/vantage/pkg/logger"
	"github.com/vantage-labs/vantage/pkg/redis"
)

// app holds the wired dependency graph shared by the commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	rdb       *redis.Client
	engine    *engine.Engine
	monitor   *monitor.Monitor
	results   *monitor.ResultRepository
	positions *monitor.PositionRepository
}

// initApp wires the full dependency graph from configuration
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "vantage")

	limiter := redis.NewRateLimiter(rdb, "vantage")
	httpClient := httputil.New(log).WithRateLimiter(limiter, redis.MarketRateLimit)

	// Market data providers
	marketClient := marketdata.NewClient(cfg, httpClient, log)
	adapter := marketdata.NewAdapter(marketClient, marketClient, marketClient, cache, log)

	// Intelligence: free scraping first, paid fallback under a shared budget
	freeIntel := marketdata.NewFreeIntelProvider(httpClient, cfg.Intel.FreeNewsBaseURL, log)
	paidIntel := marketdata.NewPaidIntelProvider(httpClient, cfg.Intel.PaidBaseURL, cfg.Intel.PaidAPIKey, log)
	intel := marketdata.NewLayeredIntelClient(freeIntel, paidIntel, cfg.Intel.PaidRequestsPerMinute, log)

	// Repositories
	ipsRepo := ips.NewRepository(db.Pool)
	positionRepo := monitor.NewPositionRepository(db.Pool)
	resultRepo := monitor.NewResultRepository(db.Pool)

	// Optional Kafka alert delivery
	var notifier contracts.AlertNotifier
	if cfg.Kafka.Enabled {
		publisher, err := alerts.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic, log)
		if err != nil {
			return nil, fmt.Errorf("connect to kafka: %w", err)
		}
		notifier = publisher
	}

	// Scan pipeline
	gen := generator.New(contracts.DefaultGeneratorConfig(), log)
	scorer := scoring.New(scoring.DefaultYieldWeights(), log)
	evaluator := ips.NewEvaluator(ips.DefaultRegistry(), contracts.DefaultScoringPolicy(), log)
	ranker := ranking.NewRanker(ranking.DefaultTopN, log)
	diversifier := ranking.NewDiversifier(ranking.DefaultDiversifyConfig(), log)

	eng := engine.New(adapter, marketClient, gen, scorer, evaluator, ipsRepo, ranker, diversifier, log)

	mon := monitor.New(
		adapter, intel, positionRepo, resultRepo, notifier, cache,
		contracts.DefaultMonitorConfig(), cfg.Intel.LookbackDays, log,
	)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		rdb:       rdb,
		engine:    eng,
		monitor:   mon,
		results:   resultRepo,
		positions: positionRepo,
	}, nil
}

// Close releases held connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
}
