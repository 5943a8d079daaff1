package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/intranet-tools/hr-knowledge-base/internal/analytics"
	"github.com/intranet-tools/hr-knowledge-base/internal/index"
	"github.com/intranet-tools/hr-knowledge-base/internal/ingest"
	"github.com/intranet-tools/hr-knowledge-base/internal/keywords"
	"github.com/intranet-tools/hr-knowledge-base/internal/portal"
	"github.com/intranet-tools/hr-knowledge-base/internal/search"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
	"github.com/intranet-tools/hr-knowledge-base/pkg/health"
	"github.com/intranet-tools/hr-knowledge-base/pkg/kafka"
	"github.com/intranet-tools/hr-knowledge-base/pkg/logger"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting hr-knowledge-base portal",
		"port", cfg.Server.Port,
		"redis", cfg.Redis.Addr,
		"kafka_enabled", cfg.Kafka.Enabled(),
	)

	m := metrics.New()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	docStore := store.New(redisClient)
	maintainer := index.NewMaintainer(docStore, m, cfg.Search.ResolveConcurrency)
	extractor := keywords.New(cfg.Keywords)
	fetcher := ingest.NewFetcher(cfg.Ingest.MaxDocumentSize, cfg.Ingest.FetchTimeout)

	resolver := search.NewResolver(docStore, m, cfg.Search)
	cached := search.NewCachedResolver(resolver, redisClient, m, cfg.Redis.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		collector    *analytics.Collector
		statsHandler *analytics.Handler
	)
	if cfg.Kafka.Enabled() {
		searchProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		ingestProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngested)
		defer searchProducer.Close()
		defer ingestProducer.Close()

		collector = analytics.NewCollector(searchProducer, ingestProducer)
		go collector.Run(ctx)

		aggregator := analytics.NewAggregator(10)
		statsHandler = analytics.NewHandler(aggregator)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, aggregator.HandleMessage)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("search-events consumer stopped", "error", err)
			}
		}()
	}

	pipeline := ingest.NewPipeline(fetcher, extractor, maintainer, docStore, cached, collector, m, cfg.Ingest)
	handler := portal.NewHandler(cached, pipeline, docStore, collector)

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	router := portal.NewRouter(handler, statsHandler, checker, m, cfg.Server.WriteTimeout)

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	if metricsShutdown != nil {
		if err := metricsShutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
