package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/lifecycle"
	"github.com/mooneden/newbet/internal/notifier"
	"github.com/mooneden/newbet/internal/odds"
	"github.com/mooneden/newbet/internal/provider/sportsdb"
	"github.com/mooneden/newbet/internal/repo"
	"github.com/mooneden/newbet/internal/scheduler"
	"github.com/mooneden/newbet/internal/settlement"
	sharedcache "github.com/mooneden/newbet/internal/shared/cache"
	"github.com/mooneden/newbet/internal/shared/config"
	"github.com/mooneden/newbet/internal/shared/db"
	skafka "github.com/mooneden/newbet/internal/shared/kafka"
	"github.com/mooneden/newbet/internal/shared/logger"
	"github.com/mooneden/newbet/internal/shared/metrics"
	"github.com/mooneden/newbet/internal/standings"
	"github.com/mooneden/newbet/internal/syncer"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("fixture-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres, Redis e Kafka
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	placedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	notif := notifier.NewKafkaNotifier(placedWriter, settledWriter)
	defer notif.Close()

	// Métricas Prometheus dos jobs e das transições de partidas
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fixture_worker_job_runs_total", Help: "passadas por job"}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fixture_worker_job_errors_total", Help: "erros por job"}, []string{"job"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fixture_worker_transitions_total", Help: "transições de status"}, []string{"to"})
	providerErrs := prometheus.NewCounter(prometheus.CounterOpts{Name: "fixture_worker_provider_errors_total", Help: "falhas do provedor"})
	settledBets := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fixture_worker_bets_settled_total", Help: "apostas liquidadas por resultado"}, []string{"outcome"})
	prometheus.MustRegister(jobRuns, jobErrors, transitions, providerErrs, settledBets)

	// Monta o pipeline: provedor -> ciclo de vida -> liquidação
	repository := repo.NewPostgres(pg)
	ranks := standings.NewStore(redisClient)
	client := sportsdb.NewClient(cfg.SportsAPIBaseURL)
	source := lifecycle.NewSportsDBSource(client)
	form := odds.NewSimulatedForm(time.Now().UnixNano())

	engine := settlement.NewEngine(log, repository, notif)
	engine.OnSettled = func(outcome string) { settledBets.WithLabelValues(outcome).Inc() }

	ctrl := lifecycle.NewController(log, repository, source, engine, form)
	ctrl.OnTransition = func(to string) { transitions.WithLabelValues(to).Inc() }
	ctrl.OnProviderError = func() { providerErrs.Inc() }

	leagues := make([]syncer.League, 0, len(cfg.Leagues))
	for _, lg := range cfg.Leagues {
		leagues = append(leagues, syncer.League{APIID: lg.APIID, Name: lg.Name})
	}
	sync := syncer.New(log, repository, client, ranks, form, cfg.SportsAPISeason, leagues)

	// Servidor HTTP leve para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(log)
	sched.OnRun = func(job string) { jobRuns.WithLabelValues(job).Inc() }
	sched.OnError = func(job string) { jobErrors.WithLabelValues(job).Inc() }

	sched.Register(scheduler.Job{
		Name:  "fixture-status",
		Every: cfg.StatusTickEvery,
		Run: func(ctx context.Context) error {
			return ctrl.AdvanceScheduled(ctx, time.Now())
		},
	})
	sched.Register(scheduler.Job{
		Name:  "live-refresh",
		Every: cfg.LiveTickEvery,
		Run:   ctrl.RefreshLive,
	})
	sched.Register(scheduler.Job{
		Name:  "league-resync",
		Every: cfg.ResyncEvery,
		Run: func(ctx context.Context) error {
			if err := sync.Resync(ctx); err != nil {
				return err
			}
			return ctrl.RefreshOdds(ctx, time.Now())
		},
	})

	log.Info("fixture-worker started",
		zap.Duration("statusTick", cfg.StatusTickEvery),
		zap.Duration("liveTick", cfg.LiveTickEvery),
		zap.Duration("resync", cfg.ResyncEvery))
	sched.Start(ctx)
	log.Info("fixture-worker stopped")
}
