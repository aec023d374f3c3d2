package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skandan/tamilnewsworker/config"
	"skandan/tamilnewsworker/internal/analytics"
	"skandan/tamilnewsworker/internal/api"
	"skandan/tamilnewsworker/internal/browser"
	"skandan/tamilnewsworker/internal/ingest"
	"skandan/tamilnewsworker/internal/scraper"
	"skandan/tamilnewsworker/internal/sentiment"
	"skandan/tamilnewsworker/internal/storage"
	"skandan/tamilnewsworker/logger"
	"skandan/tamilnewsworker/services/cache"
	"skandan/tamilnewsworker/services/publisher"

	"github.com/joho/godotenv"
)

const backfillBatchSize = 200

func main() {
	backfillOnly := flag.Bool("backfill", false, "score stored articles that have no sentiment results, then exit")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("sentiment_mode", cfg.SentimentMode).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Connect to Postgres and ensure the schema exists
	db, err := storage.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info("Connected to Postgres")

	websites := storage.NewWebsiteStore(db)
	keywords := storage.NewKeywordStore(db)
	articles := storage.NewArticleStore(db)
	sentiments := storage.NewSentimentStore(db)

	// Sentiment pipeline; the classifier connects lazily so crawl-only runs
	// never touch the model server
	classifier := sentiment.NewLazyClassifier(func() sentiment.Classifier {
		return sentiment.NewHTTPClassifier(cfg.ClassifierAddr, cfg.ClassifierMaxChars)
	})
	pipeline := sentiment.NewPipeline(cfg, keywords, sentiments, classifier)

	if *backfillOnly {
		processed, err := pipeline.Backfill(ctx, articles, backfillBatchSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Backfill failed")
		}
		log.Info().Int("processed", processed).Msg("Backfill complete")
		return
	}

	// New-article event stream
	redisPublisher := publisher.NewRedisPublisher(
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
	)
	defer redisPublisher.Close()
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Cooldown cache
	var cooldowns cache.CacheService
	if cfg.MemcacheAddr != "" {
		cooldowns = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	} else {
		cooldowns = cache.NewMemoryService()
		logger.Info("Using in-memory cooldown cache")
	}

	// Ingestion
	sessions := browser.NewWebDriverFactory(cfg.WebDriverAddr)
	coordinator := ingest.NewCoordinator(websites, keywords, articles, pipeline, redisPublisher)
	runner := ingest.NewRunner(coordinator, cooldowns, cfg.BlockCooldown)

	// HTTP API
	rollups := analytics.NewService(sentiments)
	server := api.NewServer(runner, rollups, keywords, api.AdapterSet{
		Category: func() []scraper.Adapter {
			return scraper.CreateCategoryAdapters(cfg, sessions)
		},
		Keyword: func(kws []string) []scraper.Adapter {
			return scraper.CreateKeywordAdapters(cfg, sessions, kws)
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP API")
		serverDone <- httpServer.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
}
