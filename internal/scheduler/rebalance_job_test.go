package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/rebalancing"
)

type fakeRebalancer struct {
	ctx context.Context
	req rebalancing.Request
}

func (f *fakeRebalancer) Rebalance(ctx context.Context, req rebalancing.Request) (*domain.RebalanceReport, error) {
	f.ctx = ctx
	f.req = req
	return &domain.RebalanceReport{RunID: "run-1", OK: true}, nil
}

func TestRebalanceJob_RunsOnUncancelableContext(t *testing.T) {
	fake := &fakeRebalancer{}
	job := &rebalanceJob{
		wallet:  "walletA",
		profile: domain.RiskMedium,
		service: fake,
		log:     zerolog.Nop(),
	}

	job.Run()

	require.NotNil(t, fake.ctx)
	_, hasDeadline := fake.ctx.Deadline()
	assert.False(t, hasDeadline, "an in-flight run must never be deadline-cancelled")
	assert.Nil(t, fake.ctx.Done())
}

func TestRebalanceJob_BuildsInternalRequest(t *testing.T) {
	fake := &fakeRebalancer{}
	job := &rebalanceJob{
		wallet:  "walletA",
		profile: domain.RiskHigh,
		service: fake,
		log:     zerolog.Nop(),
	}

	job.Run()

	assert.True(t, fake.req.Internal, "the schedule is operator-authorized, no signature to verify")
	assert.Equal(t, "walletA", fake.req.Wallet)
	assert.Equal(t, domain.RiskHigh, fake.req.Profile)
	assert.Empty(t, fake.req.Signature)
}
