package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"mmradar/internal/adapters/config"
	"mmradar/internal/adapters/errors/noop"
	"mmradar/internal/adapters/errors/sentry"
	"mmradar/internal/adapters/sources"
	tgadapter "mmradar/internal/adapters/telegram"
	"mmradar/internal/aggregator"
	"mmradar/internal/analyzers/composite"
	"mmradar/internal/analyzers/positioning"
	"mmradar/internal/analyzers/technical"
	"mmradar/internal/analyzers/volatility"
	"mmradar/internal/metrics"
	"mmradar/internal/report"
	"mmradar/internal/services/analysis"
	"mmradar/internal/workers"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
	"mmradar/pkg/telegram"
	"mmradar/pkg/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	agg := initAggregator(cfg, log)
	service := analysis.New(
		agg,
		positioning.New(positioningConfig(cfg.Analytics)),
		volatility.New(volatility.DefaultConfig()),
		technical.New(),
		composite.New(compositeConfig(cfg.Analytics)),
		analysis.Config{HistoryDays: cfg.MarketData.HistoryDays},
	)

	registry, err := templates.NewEmbeddedRegistry()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	assembler := report.NewAssembler(registry)

	bot, err := telegram.NewClient(telegram.Config{
		Token: cfg.Telegram.BotToken,
		Debug: cfg.Telegram.Debug,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create telegram bot: %v", err)
	}

	handler := tgadapter.NewHandler(bot, service, assembler, registry)
	bot.SetMessageHandler(handler.HandleUpdate)

	notifier := tgadapter.NewNotifier(
		bot,
		cfg.Telegram.ChatIDs,
		cfg.Workers.NotifyRetries,
		cfg.Workers.NotifyRetryDelay,
	)

	scheduler := workers.NewScheduler()
	sessionWorker, err := workers.NewSessionWorker(
		service,
		assembler,
		notifier,
		cfg.App.WatchSymbols,
		cfg.Workers.SessionTickInterval,
		cfg.Workers.MarketTimezone,
	)
	if err != nil {
		log.Fatalf("Failed to create session worker: %v", err)
	}
	scheduler.RegisterWorker(sessionWorker)

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Metrics.Addr, log)
	}

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := bot.Start(ctx); err != nil {
			log.Errorf("Telegram bot stopped with error: %v", err)
		}
	}()

	waitForShutdown(ctx, cancel, scheduler, errorTracker, log)
}

// positioningConfig applies the env-exposed thresholds over the model defaults
func positioningConfig(a config.AnalyticsConfig) positioning.Config {
	c := positioning.DefaultConfig()
	c.AssumedVol = a.AssumedVol
	c.RiskFreeRate = a.RiskFreeRate
	c.HighOIThreshold = a.HighOIThreshold
	c.MediumOIThreshold = a.MediumOIThreshold
	c.StrongGammaThreshold = a.StrongGammaThreshold
	c.DeltaFlowThreshold = a.DeltaFlowThreshold
	return c
}

func compositeConfig(a config.AnalyticsConfig) composite.Config {
	c := composite.DefaultConfig()
	c.VIXFearThreshold = a.VIXFearThreshold
	return c
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initAggregator wires the source stacks in priority order
func initAggregator(cfg *config.Config, log *logger.Logger) *aggregator.Aggregator {
	yahoo := sources.NewYahoo(cfg.MarketData)
	finnhub := sources.NewFinnhub(cfg.MarketData)
	polygon := sources.NewPolygon(cfg.MarketData)
	senate := sources.NewSenateWatcher(cfg.Disclosure, cfg.MarketData)
	house := sources.NewHouseWatcher(cfg.Disclosure, cfg.MarketData)

	opts := []aggregator.Option{
		aggregator.WithSourceTimeout(cfg.MarketData.SourceTimeout),
		aggregator.WithCursorStore(initCursorStore(cfg, log)),
	}

	return aggregator.New(
		[]aggregator.QuoteSource{yahoo, finnhub},
		[]aggregator.ChainSource{polygon},
		[]aggregator.HistorySource{yahoo, polygon},
		[]aggregator.DisclosureSource{senate, house},
		opts...,
	)
}

// initCursorStore picks Redis when configured, in-memory otherwise
func initCursorStore(cfg *config.Config, log *logger.Logger) aggregator.CursorStore {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory cursor store")
		return aggregator.NewMemoryCursorStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	log.Infow("Using Redis cursor store", "addr", cfg.Redis.Addr())
	return aggregator.NewRedisCursorStore(client, cfg.Redis.CursorTTL)
}

// startMetricsServer exposes the Prometheus endpoint
func startMetricsServer(ctx context.Context, addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Infow("Metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

// waitForShutdown waits for a shutdown signal and stops everything
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	scheduler *workers.Scheduler,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Scheduler shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
