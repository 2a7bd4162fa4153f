package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardledger/internal/account"
	"cardledger/internal/catalog"
	"cardledger/internal/config"
	"cardledger/internal/crafting"
	"cardledger/internal/database"
	"cardledger/internal/database/postgres"
	"cardledger/internal/gacha"
	"cardledger/internal/ledger"
	"cardledger/internal/market"
	"cardledger/internal/order"
	"cardledger/internal/server"
)

const (
	dbMaxConns      = 20
	dbMaxIdleTime   = 5 * time.Minute
	dbMaxLifetime   = 30 * time.Minute
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	connString := cfg.GetDBConnString()

	dbPool, err := database.NewPool(ctx, connString, dbMaxConns, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, connString); err != nil {
		slog.Error("Migrations failed", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load card catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Card catalog loaded", "path", cfg.CatalogPath, "cards", cat.Size())

	// Repositories
	ledgerRepo := postgres.NewLedgerRepository(dbPool)
	accountRepo := postgres.NewAccountRepository(dbPool)
	gachaRepo := postgres.NewGachaRepository(dbPool)
	craftingRepo := postgres.NewCraftingRepository(dbPool)
	marketRepo := postgres.NewMarketRepository(dbPool)
	orderRepo := postgres.NewOrderRepository(dbPool)

	// Services
	services := server.Services{
		Ledger:   ledger.NewService(ledgerRepo, cat),
		Gacha:    gacha.NewService(gachaRepo, cat, cfg.GachaSeed),
		Crafting: crafting.NewService(craftingRepo, accountRepo, cat, cfg.DecomposeScaleByCount),
		Market:   market.NewService(marketRepo, cat, cfg.MaxDailyTrades),
		Order:    order.NewService(orderRepo),
		Account:  account.NewService(accountRepo),
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, cat, services)

	// Run server in background so we can wait for shutdown signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
