package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/reconciliation"
	"github.com/jhoicas/salal-stock/internal/infrastructure/jobs"
	"github.com/jhoicas/salal-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/salal-stock/pkg/config"
	"github.com/jhoicas/salal-stock/pkg/logger"
)

// Worker asynq que ejecuta stock:reconcile contra PostgreSQL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR requerido para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	runner := postgres.NewTxRunner(pool, cfg.DB.TxMaxRetries, log.Component("postgres"))
	job := reconciliation.NewJob(runner, ledger.SystemClock(cfg.Stock.Location()), log.Component("reconciliation"))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:  asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Reconciler: job,
		Logger:     log.Component("jobs"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	log.Info().Str("cola", jobs.QueueDefault).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
	}
	log.Info().Msg("worker detenido")
}
