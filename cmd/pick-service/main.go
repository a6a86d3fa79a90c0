package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	phttp "github.com/radieske/pick-control/internal/pick-service/http"
	kpub "github.com/radieske/pick-control/internal/pick-service/producer"
	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/pick-service/ws"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/config"
	"github.com/radieske/pick-control/internal/shared/db"
	"github.com/radieske/pick-control/internal/shared/kafka"
	"github.com/radieske/pick-control/internal/shared/logger"
	"github.com/radieske/pick-control/internal/shared/metrics"
)

func main() {
	// dinheiro sai como número no JSON, como o app espera
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Postgres + migrações
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(ctx, pg); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	log.Info("postgres connected")

	// Redis: revisão, cache de estatísticas, revogação e pub/sub
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Kafka writer (topic pick_events)
	if cfg.Env == "local" {
		if err := kafka.EnsureTopics(ctx, cfg.KafkaBrokers, cfg.TopicPickEvents, cfg.TopicPickEventsDLQ); err != nil {
			log.Warn("ensure kafka topics", zap.Error(err))
		}
	}
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPickEvents)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicPickEvents))

	// deps
	verifier := auth.NewVerifier(cfg.JWTSecret, auth.NewRedisRevocations(rdb))
	hub := ws.NewHub(log, allowOrigin(cfg.CORSOrigins))
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisStatsChannel, hub, log)

	api := phttp.NewServer(phttp.Deps{
		Log:       log,
		Store:     repo.NewPostgres(pg),
		Cache:     cache.NewStatsCache(rdb),
		Publisher: kpub.NewKafkaPublisher(writer),
		Notifier:  cache.NewBroadcaster(rdb, cfg.RedisStatsChannel),
		Verifier:  verifier,
		WS:        hub.HandleWS,
		CacheTTL:  cfg.StatsCacheTTL,
		Service:   cfg.ServiceName,
	})

	// metrics/health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort,
		func(err error) { log.Error("metrics server failed", zap.Error(err)) },
		metrics.Check{Name: "postgres", Fn: pg.PingContext},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	defer msrv.Close()

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = apiSrv.Shutdown(shutdown)
	}()

	log.Info("pick-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api", zap.Error(err))
	}
	log.Info("pick-service stopped")
}

// allowOrigin aplica ao WebSocket a mesma lista de origens do CORS do gateway
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // clientes nativos não mandam Origin
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
