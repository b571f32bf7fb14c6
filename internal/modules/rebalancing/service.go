// Package rebalancing composes the treasury pipeline: authorize, snapshot,
// allocate, plan movements, execute vault strategies, aggregate the report.
package rebalancing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/allocation"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/auth"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/history"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/planner"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/treasury"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/vaults"
)

// RebalanceAction is the canonical action string signed by the wallet for a
// privileged rebalance request.
const RebalanceAction = "rebalance"

// Request is one rebalance invocation. Internal callers (the scheduler) set
// Internal and skip signature capture.
type Request struct {
	Wallet    string             `json:"wallet"`
	Profile   domain.RiskProfile `json:"risk_profile"`
	Timestamp int64              `json:"timestamp"`
	Signature string             `json:"signature"`
	Internal  bool               `json:"-"`
}

// Service orchestrates rebalancing operations.
type Service struct {
	verifier  *auth.Verifier
	loader    *treasury.Loader
	engine    *allocation.Engine
	planner   *planner.Planner
	executors []vaults.Executor
	ledger    PositionCounter
	rail      domain.TransferRail
	swap      domain.SwapClient
	history   *history.Repository // optional
	log       zerolog.Logger
}

var errEmptyWallet = fmt.Errorf("wallet is required")

// PositionCounter is the slice of the position ledger the stats path needs.
type PositionCounter interface {
	LoadOnce(ctx context.Context, wallet string, vault domain.VaultID)
	Positions(wallet string, vault domain.VaultID) []domain.Position
}

// NewService creates a new rebalancing service. executors must be in the
// fixed execution order; historyRepo may be nil.
func NewService(
	verifier *auth.Verifier,
	loader *treasury.Loader,
	engine *allocation.Engine,
	movementPlanner *planner.Planner,
	executors []vaults.Executor,
	positionLedger PositionCounter,
	rail domain.TransferRail,
	swapClient domain.SwapClient,
	historyRepo *history.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		verifier:  verifier,
		loader:    loader,
		engine:    engine,
		planner:   movementPlanner,
		executors: executors,
		ledger:    positionLedger,
		rail:      rail,
		swap:      swapClient,
		history:   historyRepo,
		log:       log.With().Str("service", "rebalancing").Logger(),
	}
}

// Rebalance runs the full pipeline for one wallet. Validation and
// authorization reject before any state is touched; after that the run goes
// to completion, aggregating per-vault failures instead of aborting, because
// partially-applied fund movements cannot be rolled back.
func (s *Service) Rebalance(ctx context.Context, req Request) (*domain.RebalanceReport, error) {
	if req.Wallet == "" {
		return nil, errEmptyWallet
	}
	if !domain.IsValidRiskProfile(req.Profile) {
		return nil, fmt.Errorf("unknown risk profile %q", req.Profile)
	}
	if !req.Internal {
		if err := s.verifier.Verify(RebalanceAction, req.Wallet, req.Timestamp, req.Signature); err != nil {
			return nil, fmt.Errorf("unauthorized: %w", err)
		}
	}

	started := time.Now()
	runID := uuid.NewString()
	s.log.Info().Str("run_id", runID).Str("wallet", req.Wallet).Str("profile", string(req.Profile)).Msg("rebalance started")

	snapshot := s.loader.Load(ctx, req.Wallet, req.Profile)
	decision := s.engine.Target(ctx, req.Profile)
	outcome := s.planner.Plan(ctx, req.Wallet, snapshot, decision.Allocation)

	// Executors run sequentially in the fixed vault order: later vaults are
	// funded by transfers that must land before their targets are live.
	results := make([]domain.StrategyExecutionResult, 0, len(s.executors))
	for _, executor := range s.executors {
		target := decision.Allocation.For(executor.ID()) / 100 * snapshot.TotalValue
		results = append(results, s.runExecutor(ctx, executor, req.Wallet, target))
	}

	ok := len(outcome.Errors) == 0
	for _, r := range results {
		if !r.Success {
			ok = false
		}
	}

	// Aggregate post-run statistics. A stats failure degrades the report
	// rather than failing a run whose transfers already landed.
	stats, statsErr := s.VaultStats(ctx, req.Wallet)
	if statsErr != nil {
		s.log.Warn().Err(statsErr).Str("run_id", runID).Msg("stats aggregation failed, report ships without stats")
	}

	report := &domain.RebalanceReport{
		RunID:      runID,
		Wallet:     req.Wallet,
		Profile:    req.Profile,
		OK:         ok,
		Target:     decision.Allocation,
		Reasoning:  decision.Reasoning,
		Signals:    decision.Signals,
		Executed:   outcome.Executed,
		Deferred:   outcome.Deferred,
		Errors:     outcome.Errors,
		Vaults:     results,
		Stats:      stats,
		DurationMS: time.Since(started).Milliseconds(),
	}

	if s.history != nil {
		if err := s.history.Record(report); err != nil {
			s.log.Warn().Err(err).Str("run_id", runID).Msg("failed to record run in history ledger")
		}
	}

	s.log.Info().
		Str("run_id", runID).
		Bool("ok", ok).
		Int("transfers", len(outcome.Executed)).
		Int("deferred", len(outcome.Deferred)).
		Int64("duration_ms", report.DurationMS).
		Msg("rebalance finished")
	return report, nil
}

// runExecutor isolates one vault strategy. A panicking executor becomes a
// failed result for that vault only; the other vaults still run.
func (s *Service) runExecutor(ctx context.Context, executor vaults.Executor, wallet string, target float64) (result domain.StrategyExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("vault", string(executor.ID())).Msg("vault executor panicked")
			result = domain.StrategyExecutionResult{
				VaultID: executor.ID(),
				Success: false,
				Error:   fmt.Sprintf("executor panicked: %v", r),
			}
		}
	}()
	return executor.Execute(ctx, wallet, target)
}
