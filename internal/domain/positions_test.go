package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldMemos_ReplaysHistory(t *testing.T) {
	memos := []PositionMemo{
		{Op: MemoDeposit, TokenMint: "mintA", Symbol: "SOL", Amount: 10, Price: 100},
		{Op: MemoDeposit, TokenMint: "mintA", Symbol: "SOL", Amount: 10, Price: 200},
		{Op: MemoDeposit, TokenMint: "mintB", Symbol: "WIF", Amount: 50, Price: 2},
		{Op: MemoWithdraw, TokenMint: "mintB", Amount: 50},
		{Op: MemoWithdraw, TokenMint: "mintC", Amount: 5}, // never opened
	}

	positions := FoldMemos(memos)
	require.Len(t, positions, 1)
	assert.Equal(t, "mintA", positions[0].TokenMint)
	assert.InDelta(t, 20.0, positions[0].Amount, 1e-9)
	assert.InDelta(t, 150.0, positions[0].EntryPrice, 1e-9)
}

func TestApplyMemo_DustRemoval(t *testing.T) {
	positions := make(map[string]Position)
	ApplyMemo(positions, PositionMemo{Op: MemoDeposit, TokenMint: "mintA", Amount: 1, Price: 10})
	ApplyMemo(positions, PositionMemo{Op: MemoWithdraw, TokenMint: "mintA", Amount: 1 - DustEpsilon/2})

	assert.Empty(t, positions, "sub-epsilon residue must close the position")
}

func TestDeriveVaultAddress_DeterministicAndDistinct(t *testing.T) {
	wallet := "8GpNv6cqEjzkBXbPzNM2dW47TbSpHDLRkP5qcTvF7xYk"

	a := DeriveVaultAddress(wallet, VaultGrowth)
	b := DeriveVaultAddress(wallet, VaultGrowth)
	assert.Equal(t, a, b, "derivation is a pure function")

	seen := map[string]bool{}
	for _, id := range VaultOrder {
		seen[DeriveVaultAddress(wallet, id)] = true
	}
	assert.Len(t, seen, len(VaultOrder), "each vault gets its own address")

	assert.NotEqual(t, a, DeriveVaultAddress("otherwallet", VaultGrowth))
	assert.NotEmpty(t, a)
}

func TestTreasury_VaultBalanceFor(t *testing.T) {
	tr := Treasury{Vaults: []VaultBalance{
		{ID: VaultBuffer, Balance: 40},
		{ID: VaultYield, Balance: 25},
	}}
	assert.Equal(t, 40.0, tr.VaultBalanceFor(VaultBuffer))
	assert.Equal(t, 0.0, tr.VaultBalanceFor(VaultCommodity))
}

func TestAllocation_ForAndSet(t *testing.T) {
	var a Allocation
	for i, id := range VaultOrder {
		a.Set(id, float64(i+1))
	}
	assert.Equal(t, 1.0, a.For(VaultBuffer))
	assert.Equal(t, 5.0, a.For(VaultCommodity))
	assert.InDelta(t, 15.0, a.Sum(), 1e-9)
	assert.Equal(t, 0.0, a.For(VaultID("bogus")))
}
