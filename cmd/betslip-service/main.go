package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	bhttp "github.com/radieske/football-betslip/internal/betslip-service/http"
	kpub "github.com/radieske/football-betslip/internal/betslip-service/producer"
	"github.com/radieske/football-betslip/internal/betslip-service/registry"
	"github.com/radieske/football-betslip/internal/betslip-service/repo"
	"github.com/radieske/football-betslip/internal/betslip-service/ws"
	"github.com/radieske/football-betslip/internal/footballapi"
	"github.com/radieske/football-betslip/internal/prediction"
	"github.com/radieske/football-betslip/internal/session"
	"github.com/radieske/football-betslip/internal/shared/cache"
	"github.com/radieske/football-betslip/internal/shared/config"
	"github.com/radieske/football-betslip/internal/shared/db"
	"github.com/radieske/football-betslip/internal/shared/kafka"
	"github.com/radieske/football-betslip/internal/shared/logger"
	"github.com/radieske/football-betslip/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting service", zap.String("backend", cfg.FootballAPIURL))

	// Postgres: auditoria dos envios
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	audit := repo.NewPostgres(pg)
	if err := audit.EnsureSchema(ctx); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	// Redis: sessões, cache de previsão e pub/sub
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka: bet_submitted
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSubmitted)
	defer writer.Close()
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetSubmitted)

	// métricas num registry próprio
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBetslip(reg)

	api := footballapi.New(cfg.FootballAPIURL, cfg.APITimeout, nil, log)
	api.SessionTTL = cfg.SessionTTL
	sessions := func(sid string) session.Store { return session.NewRedis(rdb, sid) }

	slips := registry.New(func(sid string) registry.Backend {
		return api.WithSession(sessions(sid))
	}, log)
	slips.StartSweeper(ctx, time.Minute, cfg.SessionTTL)

	predictions := prediction.NewService(
		prediction.NewRedisCache(rdb, 24*time.Hour),
		prediction.NewRedisPublisher(rdb),
		cfg.RedisPubSubChannel,
		cfg.PredictionTTL,
		m,
		log,
	)

	hub := ws.NewHub(func(*http.Request) bool { return true }, log)
	hub.OnUpdate(slips.ApplyPrediction)
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	srv := bhttp.NewServer(bhttp.Deps{
		Log:         log,
		Sessions:    sessions,
		Backend:     func(s session.Store) bhttp.Backend { return api.WithSession(s) },
		Slips:       slips,
		Predictions: predictions,
		Audit:       audit,
		Publisher:   publ,
		Metrics:     m,
		WS:          http.HandlerFunc(hub.HandleWS),
	})

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betslip-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("betslip-service stopped")
}
