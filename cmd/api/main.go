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
	"github.com/jhoicas/packaging-ledger/internal/application/inventory"
	"github.com/jhoicas/packaging-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/packaging-ledger/internal/interfaces/http"
	"github.com/jhoicas/packaging-ledger/pkg/config"
	"github.com/jhoicas/packaging-ledger/pkg/logger"
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
		Dur("lock_timeout", cfg.Ledger.LockTimeout).
		Int("retry_max_attempts", cfg.Ledger.RetryMaxAttempts).
		Msg("iniciando aplicación")

	if cfg.DB.MigrateOnBoot {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	retryPolicy := postgres.RetryPolicyFromConfig(cfg.Ledger)
	warehouseRepo := postgres.NewWarehouseRepository(pool, retryPolicy, log)
	packagingRepo := postgres.NewPackagingRepository(pool, retryPolicy, log)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	ledgerRepo := postgres.NewTransactionLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout, retryPolicy, log)

	validator := inventory.NewTransactionValidator(warehouseRepo, packagingRepo)
	submitUC := inventory.NewSubmitTransactionUseCase(txRunner, validator, log)
	queryUC := inventory.NewQueryUseCase(ledgerRepo, inventoryRepo)
	replayUC := inventory.NewReplayUseCase(txRunner, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Packaging Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Submitter: submitUC,
		Queries:   queryUC,
		Verifier:  replayUC,
		JWTSecret: cfg.JWT.Secret,
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
