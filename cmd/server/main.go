// Package main is the entry point for the ShadowFund treasury engine: an
// autonomous service that splits a user's capital across five vaults,
// computes target allocations from market signals and risk limits, and
// drives each vault's strategy to its target.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/advisor"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/lending"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/marketdata"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/memo"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/rail"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/clients/swap"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/config"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/database"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/allocation"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/auth"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/history"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/ledger"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/planner"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/rebalancing"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/signals"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/treasury"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/vaults"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/scheduler"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/server"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)
	log.Info().Str("mode", cfg.RunMode).Msg("Starting ShadowFund treasury engine")

	// Clients
	railClient := rail.NewClient(cfg.RailURL, log)
	lendingClient := lending.NewClient(cfg.LendingURL, log)
	swapClient := swap.NewClient(cfg.SwapURL, log)
	marketClient := marketdata.NewClient(cfg.MarketDataURL, log)
	memoClient := memo.NewClient(cfg.MemoURL, log)

	var advisorClient domain.AdvisorClient
	if cfg.AdvisorURL != "" {
		advisorClient = advisor.NewClient(cfg.AdvisorURL, cfg.AdvisorAPIKey, log)
	} else {
		log.Info().Msg("no advisor configured, allocations use rule-based path only")
	}

	// History ledger
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "history.db"),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer db.Close()
	historyRepo, err := history.NewRepository(db.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history repository")
	}

	// Core services
	verifier := auth.NewVerifier(log)
	loader := treasury.NewLoader(railClient, log)
	collector := signals.NewCollector(marketClient, log)
	engine := allocation.NewEngine(advisorClient, collector, allocation.NewStore(), log)
	movementPlanner := planner.NewPlanner(railClient, cfg.MinTransfer(), log)
	positionLedger := ledger.NewLedger(memoClient, log)

	simulate := cfg.RunMode == config.ModeTest
	executors := []vaults.Executor{
		vaults.NewBufferExecutor(railClient, log),
		vaults.NewYieldExecutor(lendingClient, log),
		vaults.NewGrowthExecutor(swapClient, positionLedger, simulate, log),
		vaults.NewSpeculativeExecutor(swapClient, positionLedger, simulate, log),
		vaults.NewCommodityExecutor(swapClient, memoClient, positionLedger, simulate, log),
	}

	service := rebalancing.NewService(
		verifier,
		loader,
		engine,
		movementPlanner,
		executors,
		positionLedger,
		railClient,
		swapClient,
		historyRepo,
		log,
	)

	// Optional auto-rebalance schedule
	sched := scheduler.NewScheduler(log)
	if cfg.AutoRebalanceCron != "" {
		if err := sched.AddRebalanceJob(cfg.AutoRebalanceCron, cfg.AutoRebalanceWallet, cfg.DefaultRiskProfile, service); err != nil {
			log.Fatal().Err(err).Msg("Failed to register auto-rebalance job")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Rebalancing: service,
		Engine:      engine,
		History:     historyRepo,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
