package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/application/restock"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
	"github.com/invlabs/stock-ledger-api/internal/infrastructure/memory"
	"github.com/invlabs/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/invlabs/stock-ledger-api/internal/interfaces/http"
	"github.com/invlabs/stock-ledger-api/pkg/config"
	"github.com/invlabs/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("starting application")

	ctx := context.Background()

	var (
		txRunner     reservation.TxRunner
		ledgerReader repository.LedgerReader
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore(cfg.Reservation.LockWait)
		txRunner = store
		ledgerReader = store
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, cfg.Reservation.LockWait)
		ledgerReader = postgres.NewLedgerRepository(pool)
	}

	reservationUC := reservation.NewUseCase(txRunner, cfg.Reservation.TTL, log)
	restockUC := restock.NewUseCase(ledgerReader)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	sweeper := reservation.NewSweeper(reservationUC, cfg.Reservation.SweepInterval, log)
	go sweeper.Run(sweepCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReservationUC: reservationUC,
		RestockUC:     restockUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
