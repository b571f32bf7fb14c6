package history

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/database"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: "history-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func sampleReport(runID string) *domain.RebalanceReport {
	return &domain.RebalanceReport{
		RunID:   runID,
		Wallet:  "walletA",
		Profile: domain.RiskMedium,
		OK:      true,
		Target:  domain.Allocation{Buffer: 40, Yield: 25, Growth: 20, Speculative: 10, Commodity: 5},
		Executed: []domain.PlannedTransfer{
			{VaultID: domain.VaultYield, Amount: 250},
			{VaultID: domain.VaultGrowth, Amount: 200},
		},
		Deferred:   []domain.DeferredTransfer{{VaultID: domain.VaultCommodity, Amount: 1}},
		DurationMS: 420,
	}
}

func TestRecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Record(sampleReport("run-1")))

	runs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "walletA", run.Wallet)
	assert.Equal(t, "medium", run.Profile)
	assert.Equal(t, 2, run.Transfers)
	assert.Equal(t, 1, run.Deferrals)
	assert.Equal(t, 0, run.Errors)
	assert.True(t, run.OK)
	assert.Equal(t, int64(420), run.DurationMS)
	assert.InDelta(t, 40.0, run.Target.Buffer, 1e-9)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRecord_DuplicateRunIDRejected(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Record(sampleReport("run-1")))
	assert.Error(t, repo.Record(sampleReport("run-1")))
}

func TestRecent_FailedRunRoundTrips(t *testing.T) {
	repo := newTestRepo(t)
	report := sampleReport("run-failed")
	report.OK = false
	report.Errors = []domain.TransferError{{VaultID: domain.VaultYield, Message: "rail timeout"}}
	require.NoError(t, repo.Record(report))

	runs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].OK)
	assert.Equal(t, 1, runs[0].Errors)
}

func TestRecent_LimitBounds(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(sampleReport(fmt.Sprintf("run-%d", i))))
	}

	runs, err := repo.Recent(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	// Out-of-range limits fall back to the default of 50.
	runs, err = repo.Recent(0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)

	runs, err = repo.Recent(10_000)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestRecent_EmptyLedger(t *testing.T) {
	repo := newTestRepo(t)
	runs, err := repo.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
