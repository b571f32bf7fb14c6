package treasury

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

const testWallet = "3FzqKxUxFcWJtkeDVtV6M5cMm2srMWqAKTPzKzDfLRRn"

type fakeRail struct {
	balances map[string]float64
	public   float64
	failAddr string
	failAll  bool
}

func (f *fakeRail) GetBalance(_ context.Context, address string) (float64, error) {
	if f.failAll || address == f.failAddr {
		return 0, errors.New("balance query failed")
	}
	return f.balances[address], nil
}

func (f *fakeRail) GetPublicBalance(_ context.Context, _ string) (float64, error) {
	if f.failAll {
		return 0, errors.New("balance query failed")
	}
	return f.public, nil
}

func (f *fakeRail) Transfer(_ context.Context, _ domain.TransferRequest) (*domain.TransferResult, error) {
	return nil, errors.New("not supported")
}

func (f *fakeRail) Deposit(_ context.Context, _ string, _ float64) (*domain.TransferResult, error) {
	return nil, errors.New("not supported")
}

func (f *fakeRail) Withdraw(_ context.Context, _ string, _ float64) (*domain.TransferResult, error) {
	return nil, errors.New("not supported")
}

func (f *fakeRail) IsBelowMinimum(_ error) bool { return false }

func TestLoad_SumsWalletAndVaults(t *testing.T) {
	rail := &fakeRail{
		balances: map[string]float64{
			testWallet: 50,
			domain.DeriveVaultAddress(testWallet, domain.VaultBuffer): 100,
			domain.DeriveVaultAddress(testWallet, domain.VaultYield):  30,
		},
		public: 12,
	}
	l := NewLoader(rail, zerolog.Nop())

	snapshot := l.Load(context.Background(), testWallet, domain.RiskMedium)

	assert.InDelta(t, 180.0, snapshot.TotalValue, 1e-9)
	assert.InDelta(t, 50.0, snapshot.WalletBalance, 1e-9)
	assert.InDelta(t, 12.0, snapshot.PublicBalance, 1e-9)
	assert.Equal(t, domain.RiskMedium, snapshot.RiskProfile)
	require.Len(t, snapshot.Vaults, 5)
	assert.InDelta(t, 100.0, snapshot.VaultBalanceFor(domain.VaultBuffer), 1e-9)
	assert.InDelta(t, 0.0, snapshot.VaultBalanceFor(domain.VaultCommodity), 1e-9)
}

func TestLoad_VaultOrderIsStable(t *testing.T) {
	l := NewLoader(&fakeRail{balances: map[string]float64{}}, zerolog.Nop())
	snapshot := l.Load(context.Background(), testWallet, domain.RiskLow)

	for i, v := range snapshot.Vaults {
		assert.Equal(t, domain.VaultOrder[i], v.ID)
		assert.Equal(t, domain.DeriveVaultAddress(testWallet, v.ID), v.Address)
	}
}

func TestLoad_FailedQueryContributesZero(t *testing.T) {
	rail := &fakeRail{
		balances: map[string]float64{
			testWallet: 50,
			domain.DeriveVaultAddress(testWallet, domain.VaultGrowth): 25,
		},
	}
	rail.failAddr = domain.DeriveVaultAddress(testWallet, domain.VaultGrowth)
	l := NewLoader(rail, zerolog.Nop())

	snapshot := l.Load(context.Background(), testWallet, domain.RiskMedium)

	assert.InDelta(t, 50.0, snapshot.TotalValue, 1e-9, "failed vault reads as zero, not as an error")
	assert.InDelta(t, 0.0, snapshot.VaultBalanceFor(domain.VaultGrowth), 1e-9)
}

func TestLoad_AllQueriesFailingYieldsEmptySnapshot(t *testing.T) {
	l := NewLoader(&fakeRail{failAll: true}, zerolog.Nop())
	snapshot := l.Load(context.Background(), testWallet, domain.RiskHigh)

	assert.Zero(t, snapshot.TotalValue)
	assert.Zero(t, snapshot.WalletBalance)
	assert.Zero(t, snapshot.PublicBalance)
	require.Len(t, snapshot.Vaults, 5)
}
