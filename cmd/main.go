package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"matchpulse/internal/adapters/ai"
	"matchpulse/internal/adapters/clickhouse"
	"matchpulse/internal/adapters/config"
	"matchpulse/internal/adapters/errors/noop"
	"matchpulse/internal/adapters/errors/sentry"
	"matchpulse/internal/adapters/feeds/bluesky"
	"matchpulse/internal/adapters/feeds/twitter"
	kafkaadapter "matchpulse/internal/adapters/kafka"
	postgresadapter "matchpulse/internal/adapters/postgres"
	redisadapter "matchpulse/internal/adapters/redis"
	"matchpulse/internal/adapters/telegram"
	"matchpulse/internal/api"
	"matchpulse/internal/api/health"
	streamapi "matchpulse/internal/api/stream"
	"matchpulse/internal/api/summarize"
	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
	chrepo "matchpulse/internal/repository/clickhouse"
	pgrepo "matchpulse/internal/repository/postgres"
	svcanalytics "matchpulse/internal/services/analytics"
	"matchpulse/internal/services/selection"
	"matchpulse/internal/services/stream"
	"matchpulse/internal/services/summary"
	"matchpulse/internal/services/window"
	"matchpulse/internal/workers"
	"matchpulse/internal/workers/snapshot"
	"matchpulse/internal/workers/sweeper"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

const version = "0.3.0"

// pipeline bundles one platform's collaborators
type pipeline struct {
	platform account.Platform
	feed     post.FeedSource
	selector *selection.Selector
}

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
	log.Infof("Starting %s %s in %s mode", cfg.App.Name, version, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Required storage
	pgClient, err := postgresadapter.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redisadapter.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Optional analytics store
	var chClient *clickhouse.Client
	if cfg.ClickHouse.Enabled {
		chClient, err = clickhouse.NewClient(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		defer func() { _ = chClient.Close() }()
	} else {
		log.Info("ClickHouse disabled, snapshots and audits will not be stored")
	}

	// Repositories
	overrideRepo := pgrepo.NewOverrideRepository(pgClient.DB())
	matchRepo := pgrepo.NewMatchRepository(pgClient.DB())

	var recorder analytics.Recorder
	if chClient != nil {
		recorder = chrepo.NewAnalyticsRepository(chClient.Conn())
	}

	// Alerting
	var alerter analytics.Alerter
	if cfg.Telegram.Enabled() {
		notifier, err := telegram.NewNotifier(telegram.Config{
			Token:  cfg.Telegram.BotToken,
			ChatID: cfg.Telegram.ChatID,
		})
		if err != nil {
			log.Warnf("Telegram alerter disabled: %v", err)
		} else {
			alerter = notifier
			log.Info("Telegram alerter initialized")
		}
	}

	// Per-platform feed sources behind the Redis profile cache
	profileCache := redisadapter.NewProfileCache(redisClient, cfg.Redis.ProfileTTL)
	evaluator := selection.NewEvaluator(cfg.Selection.MinFollowers, cfg.Selection.MinAccountMonths)

	twitterSource := twitter.NewSource(cfg.Feeds.TwitterBearerToken, cfg.Feeds.TwitterRateLimit)
	blueskySource := bluesky.NewSource(cfg.Feeds.BlueskyHost, cfg.Feeds.BlueskyRateLimit)

	pipelines := []pipeline{
		{
			platform: account.PlatformTwitter,
			feed:     twitterSource,
			selector: selection.NewSelector(
				account.PlatformTwitter,
				cfg.Feeds.TwitterAllowlist,
				overrideRepo,
				selection.NewCachedResolver(account.PlatformTwitter, twitterSource, profileCache),
				evaluator,
				cfg.Selection.MaxAccounts,
			),
		},
		{
			platform: account.PlatformBluesky,
			feed:     blueskySource,
			selector: selection.NewSelector(
				account.PlatformBluesky,
				cfg.Feeds.BlueskyAllowlist,
				overrideRepo,
				selection.NewCachedResolver(account.PlatformBluesky, blueskySource, profileCache),
				evaluator,
				cfg.Selection.MaxAccounts,
			),
		},
	}

	// Analytics core
	clock := window.NewClock(window.Config{
		LiveDurationMin:    cfg.Window.LiveDurationMin,
		PreWindowHours:     cfg.Window.PreWindowHours,
		PostWindowMin:      cfg.Window.PostWindowMin,
		DefaultLookbackMin: cfg.Window.DefaultLookbackMin,
	})
	engine := svcanalytics.NewEngine(cfg.Stream.Keywords, svcanalytics.DefaultSampleCount)

	// Tick fan-out sinks
	var sinks []stream.TickSink
	if recorder != nil {
		sinks = append(sinks, stream.NewRecorderSink(recorder))
	}
	if cfg.Kafka.Enabled() {
		producer := kafkaadapter.NewProducer(kafkaadapter.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer func() { _ = producer.Close() }()
		sinks = append(sinks, kafkaadapter.NewTickSink(producer, cfg.Kafka.TickTopic))
		log.Info("Kafka tick fan-out enabled", "topic", cfg.Kafka.TickTopic)
	}

	// Stream generators, one per platform
	streamOpts := stream.Options{
		TickInterval:      cfg.Stream.TickInterval,
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		MaxDuration:       cfg.Stream.MaxDuration,
	}
	generators := make(map[account.Platform]*stream.Generator, len(pipelines))
	for _, p := range pipelines {
		generators[p.platform] = stream.NewGenerator(p.selector, p.feed, clock, engine, streamOpts, sinks...)
	}

	// Summarizer (Twitter corpus by default, per-request platform choice
	// picks the pipeline)
	summarizers := make(map[account.Platform]*summary.Service, len(pipelines))
	chatProvider := ai.NewOpenAIClient(cfg.Summarizer.OpenAIKey, cfg.Summarizer.Model, cfg.Summarizer.ReservedResponseTokens)
	limiter := summary.NewFixedWindowLimiter(cfg.Summarizer.RateLimitRequests, cfg.Summarizer.RateLimitWindow)
	budget := summary.BudgetConfig{
		ModelMaxTokens:         cfg.Summarizer.ModelMaxTokens,
		ReservedResponseTokens: cfg.Summarizer.ReservedResponseTokens,
		CharsPerToken:          cfg.Summarizer.CharsPerToken,
		MaxPosts:               cfg.Summarizer.MaxPosts,
	}
	for _, p := range pipelines {
		summarizers[p.platform] = summary.NewService(
			p.selector, p.feed, clock, chatProvider, limiter, budget, recorder, alerter,
		)
	}

	// Background workers
	scheduler := workers.NewScheduler()
	if recorder != nil && cfg.Workers.SnapshotEnabled {
		snapshotPipelines := make([]snapshot.PlatformPipeline, 0, len(pipelines))
		for _, p := range pipelines {
			snapshotPipelines = append(snapshotPipelines, snapshot.PlatformPipeline{
				Platform: p.platform,
				Selector: p.selector,
				Feed:     p.feed,
			})
		}
		scheduler.Register(snapshot.NewWorker(
			cfg.Workers.SnapshotInterval, matchRepo, snapshotPipelines, clock, engine, recorder,
		))
	}
	if cfg.Workers.OverrideSweepEnabled {
		scheduler.Register(sweeper.NewWorker(cfg.Workers.OverrideSweepInterval, overrideRepo))
	}

	// HTTP surface
	var chConn driver.Conn
	if chClient != nil {
		chConn = chClient.Conn()
	}
	healthHandler := health.New(log, pgClient.DB(), chConn, redisClient.Client(), cfg.App.Name, version)
	streamHandler := streamapi.NewHandler(generators, matchRepo)
	summarizeHandler := summarize.NewHandler(summarizers, matchRepo)

	server := api.NewServer(api.ServerConfig{
		Port:        cfg.App.Port,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, healthHandler, streamHandler, summarizeHandler, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")
	waitForShutdown(ctx, cancel, server, scheduler, errorTracker, log)
}

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

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	tracker errors.Tracker,
	log *logger.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %v, shutting down...", sig)
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down...")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Scheduler stop error: %v", err)
	}

	if err := tracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Error tracker flush failed: %v", err)
	}
	log.Info("Shutdown complete")
}
