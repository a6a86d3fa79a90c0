package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/api-gateway/proxy"
	"github.com/radieske/pick-control/internal/shared/config"
	"github.com/radieske/pick-control/internal/shared/logger"
	"github.com/radieske/pick-control/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	h, err := proxy.NewRouter(proxy.Targets{Picks: cfg.PicksURL, Auth: cfg.AuthURL}, cfg.CORSOrigins, log)
	if err != nil {
		log.Fatal("gateway config", zap.Error(err))
	}

	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(err error) { log.Error("metrics server failed", zap.Error(err)) })
	defer msrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("api-gateway listening", zap.String("addr", srv.Addr),
		zap.String("picks", cfg.PicksURL), zap.String("auth", cfg.AuthURL))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
