// Package scheduler runs the optional periodic auto-rebalance job.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/rebalancing"
)

// jobWatchdog is how long a scheduled run may hold its job slot before it is
// flagged as stuck. It never cancels the run: transfers cannot be rolled
// back, so a rebalance that started always runs to completion.
const jobWatchdog = 5 * time.Minute

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// AddRebalanceJob registers the periodic rebalance for one wallet. The
// internal trigger path skips signature verification: the schedule itself is
// operator-authorized configuration.
func (s *Scheduler) AddRebalanceJob(spec, wallet string, profile domain.RiskProfile, service *rebalancing.Service) error {
	job := &rebalanceJob{
		wallet:  wallet,
		profile: profile,
		service: service,
		log:     s.log.With().Str("job", "auto_rebalance").Logger(),
	}
	_, err := s.cron.AddJob(spec, job)
	return err
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// rebalancer is the slice of the rebalancing service the job needs.
type rebalancer interface {
	Rebalance(ctx context.Context, req rebalancing.Request) (*domain.RebalanceReport, error)
}

type rebalanceJob struct {
	wallet  string
	profile domain.RiskProfile
	service rebalancer
	log     zerolog.Logger
}

// Run executes one scheduled rebalance on an uncancelable context. The
// watchdog only logs; an in-flight run is never interrupted mid-transfer.
func (j *rebalanceJob) Run() {
	watchdog := time.AfterFunc(jobWatchdog, func() {
		j.log.Warn().Dur("running_for", jobWatchdog).Msg("scheduled rebalance still running")
	})
	defer watchdog.Stop()

	report, err := j.service.Rebalance(context.Background(), rebalancing.Request{
		Wallet:   j.wallet,
		Profile:  j.profile,
		Internal: true,
	})
	if err != nil {
		j.log.Error().Err(err).Msg("scheduled rebalance rejected")
		return
	}
	j.log.Info().
		Str("run_id", report.RunID).
		Bool("ok", report.OK).
		Int("transfers", len(report.Executed)).
		Msg("scheduled rebalance finished")
}
