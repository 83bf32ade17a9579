package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	bhttp "github.com/mooneden/newbet/internal/betapi/http"
	"github.com/mooneden/newbet/internal/betting"
	"github.com/mooneden/newbet/internal/notifier"
	"github.com/mooneden/newbet/internal/repo"
	sharedcache "github.com/mooneden/newbet/internal/shared/cache"
	"github.com/mooneden/newbet/internal/shared/config"
	"github.com/mooneden/newbet/internal/shared/db"
	skafka "github.com/mooneden/newbet/internal/shared/kafka"
	"github.com/mooneden/newbet/internal/shared/logger"
	"github.com/mooneden/newbet/internal/shared/metrics"
	"github.com/mooneden/newbet/internal/standings"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (classificação por rodada)
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka (bet_placed / bet_settled)
	placedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	notif := notifier.NewKafkaNotifier(placedWriter, settledWriter)
	defer notif.Close()

	// deps
	repository := repo.NewPostgres(pg)
	ranks := standings.NewStore(redisClient)
	svc := betting.NewService(log, repository, notif)

	// HTTP público
	api := bhttp.NewServer(log, svc, repository, ranks)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// Shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
	}()

	log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api", zap.Error(err))
	}
	log.Info("bet-service stopped")
}
