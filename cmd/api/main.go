package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/salal-stock/internal/application/inventory"
	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/reconciliation"
	"github.com/jhoicas/salal-stock/internal/application/salal"
	"github.com/jhoicas/salal-stock/internal/application/vale"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	domaininv "github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
	"github.com/jhoicas/salal-stock/internal/infrastructure/cache"
	"github.com/jhoicas/salal-stock/internal/infrastructure/jobs"
	"github.com/jhoicas/salal-stock/internal/infrastructure/memory"
	"github.com/jhoicas/salal-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/salal-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/salal-stock/internal/interfaces/http"
	"github.com/jhoicas/salal-stock/pkg/config"
	"github.com/jhoicas/salal-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, cancelListen := context.WithCancel(context.Background())
	defer cancelListen()

	var (
		store         ledger.Store
		catalogReader repository.CatalogReader
	)
	switch cfg.Store.Driver {
	case "memory":
		store = memory.New()
		catalogReader = memory.NewCatalog()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if len(applied) > 0 {
			log.Info().Strs("migraciones", applied).Msg("migraciones aplicadas")
		}
		pgStore := postgres.NewStore(pool, cfg.DB.TxMaxRetries, log.Component("postgres"))
		go func() {
			if err := pgStore.Listen(ctx); err != nil {
				log.Error().Err(err).Msg("listener de cambios finalizado")
			}
		}()
		store = pgStore
		catalogReader = postgres.NewCatalogRepository(pool)
	}

	var queue httpRouter.ReconcileQueue
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		catalogReader = cache.NewCatalogCache(rdb, catalogReader, cfg.Redis.CatalogCacheTTL, log.Component("cache"))

		jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer jobsClient.Close()
		queue = jobsClient
	}

	clock := ledger.SystemClock(cfg.Stock.Location())
	catalog := ledger.NewCatalog(catalogReader, entity.UnitConversion{
		UnitsPerBox:  int64(cfg.Stock.DefaultUnitsPerBox),
		UnitsPerTray: int64(cfg.Stock.DefaultUnitsPerTray),
	}, log.Component("catalog"))

	valeUC := vale.NewUseCase(store, catalog, clock, log.Component("vale"))
	salalUC := salal.NewUseCase(store, catalog, clock, salal.Settings{
		GramsPerUnit:   decimal.NewFromFloat(cfg.Stock.GramsPerUnit),
		WasteSkuCode:   cfg.Stock.WasteSku,
		SalaLLabel:     cfg.Stock.SalaLLabel,
		WarehouseLabel: cfg.Stock.WarehouseLabel,
		CleanSkus:      cleanSkuTable(cfg.Stock),
	}, log.Component("salal"))
	inventoryUC := inventory.NewUseCase(store, catalog, clock, log.Component("inventory"))
	reconcileJob := reconciliation.NewJob(store, clock, log.Component("reconciliation"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Sala L Stock API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ValeUC:      valeUC,
		SalaLUC:     salalUC,
		InventoryUC: inventoryUC,
		Reconciler:  reconcileJob,
		Queue:       queue,
		Watcher:     store,
		Printer:     pdf.NewValePDFGenerator(),
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancelListen()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func cleanSkuTable(c config.StockConfig) *domaininv.CleanSkuTable {
	rules := make([]domaininv.PrefixRule, 0, len(c.CleanSkuPrefixes))
	for prefix, clean := range c.CleanSkuPrefixes {
		rules = append(rules, domaininv.PrefixRule{Prefix: prefix, CleanSku: clean})
	}
	return domaininv.NewCleanSkuTable(c.CleanSkuMap, rules, c.CleanSkuDefault)
}
