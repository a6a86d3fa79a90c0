package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	ahttp "github.com/radieske/pick-control/internal/auth-service/http"
	"github.com/radieske/pick-control/internal/auth-service/repo"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/config"
	"github.com/radieske/pick-control/internal/shared/db"
	"github.com/radieske/pick-control/internal/shared/logger"
	"github.com/radieske/pick-control/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(ctx, pg); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	revocations := auth.NewRedisRevocations(rdb)
	api := ahttp.NewServer(log,
		repo.NewPostgres(pg),
		auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		auth.NewVerifier(cfg.JWTSecret, revocations),
		revocations,
	)

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

	log.Info("auth-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api", zap.Error(err))
	}
}
