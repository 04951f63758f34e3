package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/brandbeam/brandbeam-backend/api/routes"
	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/internal/funding"
	"github.com/brandbeam/brandbeam-backend/internal/payouts"
	"github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/config"
	"github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/gateway"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/migrate"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
	"github.com/brandbeam/brandbeam-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	signer, err := gateway.NewSigner(cfg.Gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway signer", err)
		os.Exit(1)
	}
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	walletRepo := wallet.NewRepository(dbClient.DB())
	walletService, err := wallet.NewService(dbClient, walletRepo, auditService, outboxService, signer, cfg.Wallet, cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	fundingService, err := funding.NewService(dbClient, funding.NewRepository(dbClient.DB()), walletRepo, auditService, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create funding service", err)
		os.Exit(1)
	}

	payoutService, err := payouts.NewService(dbClient, payouts.NewRepository(dbClient.DB()), funding.NewRepository(dbClient.DB()), auditService, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, walletService, fundingService, payoutService, auditService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
