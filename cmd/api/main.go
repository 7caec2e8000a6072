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
	"github.com/jhoicas/stockledger/internal/application/availability"
	"github.com/jhoicas/stockledger/internal/application/bom"
	"github.com/jhoicas/stockledger/internal/application/costing"
	"github.com/jhoicas/stockledger/internal/application/importer"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/application/substitution"
	"github.com/jhoicas/stockledger/internal/application/usecase"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/internal/infrastructure/cache"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stockledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stockledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stockledger/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/stockledger/internal/interfaces/http"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/jhoicas/stockledger/pkg/retry"
	"github.com/shopspring/decimal"
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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()

	var (
		store    repository.Store
		txRunner ports.TxRunner
	)
	switch cfg.App.StoreDriver {
	case "memory":
		db := memory.NewDB()
		store, txRunner = db.Store(), db
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store, txRunner = postgres.NewStore(pool), postgres.NewTxRunner(pool)
	}

	// Caché de explosiones: opcional, sin Redis se recalcula siempre.
	var explosions ports.ExplosionCache = ports.NoopExplosionCache{}
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché deshabilitada")
		} else {
			defer client.Close()
			explosions = cache.NewRedisExplosionCache(client, cfg.Redis.TTL, log.Component("cache"))
		}
	}

	retryCfg := retry.Config{
		MaxRetries: cfg.Ledger.MaxRetries,
		BaseDelay:  cfg.Ledger.RetryBaseDelay,
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, store, inventory.LedgerConfig{
		AllowNegativeBackfill: cfg.Ledger.AllowNegativeBackfill,
		Retry:                 retryCfg,
		PageSize:              cfg.Ledger.PageSize,
	}, log.Component("ledger"))
	replenishmentUC := inventory.NewReplenishmentUseCase(store, inventory.ReorderConfig{
		SafetyMultiplier:    decimal.NewFromFloat(cfg.Reorder.SafetyMultiplier),
		DefaultLeadTimeDays: cfg.Reorder.DefaultLeadTimeDays,
		VelocityWindowDays:  cfg.Reorder.VelocityWindowDays,
	})
	costingUC := costing.NewUseCase(store, infrapdf.NewMarotoPDFGenerator(), log.Component("costing"))
	bomUC := bom.NewUseCase(txRunner, store, explosions, retryCfg, log.Component("bom"))
	atpUC := availability.NewUseCase(bomUC, store, availability.Config{
		AllocationTracking: cfg.ATP.AllocationTracking,
	})
	substitutionUC := substitution.NewUseCase(txRunner, store, explosions, substitution.Config{
		Timeout:     cfg.Substitution.Timeout,
		MaxPageSize: cfg.Substitution.MaxPageSize,
		Retry:       retryCfg,
	}, log.Component("substitution"))
	importerUC := importer.NewUseCase(spreadsheet.NewReader(), ledgerUC, store, importer.Config{
		DefaultCostingMethod: entity.CostingMethod(cfg.Import.DefaultCostingMethod),
		MaxRows:              cfg.Import.MaxRows,
	}, log.Component("import"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó el archivo)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stockledger API",
		}))
	} else {
		log.Info().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(store),
		LocationUC:    usecase.NewLocationUseCase(store.Locations),
		Ledger:        ledgerUC,
		Replenishment: replenishmentUC,
		Costing:       costingUC,
		BOM:           bomUC,
		Availability:  atpUC,
		Substitution:  substitutionUC,
		Importer:      importerUC,
		JWTSecret:     cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
