package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/config"
	"github.com/radieske/pick-control/internal/shared/db"
	"github.com/radieske/pick-control/internal/shared/kafka"
	"github.com/radieske/pick-control/internal/shared/logger"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/internal/stats-worker/consumer"
)

func main() {
	// o payload cacheado é servido tal qual pelo pick-service
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// consumer group stats-worker
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicPickEvents, "stats-worker")
	defer reader.Close()

	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPickEventsDLQ)
	defer dlq.Close()

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Repo:         repo.NewPostgres(pg),
		Cache:        cache.NewStatsCache(rdb),
		Broadcaster:  cache.NewBroadcaster(rdb, cfg.RedisStatsChannel),
		DLQ:          dlq,
		CacheTTL:     cfg.StatsCacheTTL,
		OnConsumed:   func() { metrics.WorkerConsumed.Inc() },
		OnRecomputed: func() { metrics.WorkerRecomputed.Inc() },
		OnError:      func(stage string) { metrics.WorkerErrors.WithLabelValues(stage).Inc() },
	}

	msrv := metrics.StartMetricsServer(cfg.MetricsPort,
		func(err error) { log.Error("metrics server failed", zap.Error(err)) },
		metrics.Check{Name: "postgres", Fn: pg.PingContext},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	defer msrv.Close()

	log.Info("stats-worker started", zap.String("topic", cfg.TopicPickEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("stats-worker stopped")
}
