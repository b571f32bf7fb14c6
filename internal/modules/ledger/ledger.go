// Package ledger maintains the per-wallet, per-vault in-memory position
// cache, lazily reconstructed from the durable memo substrate.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// book is one wallet+vault position set plus the memos emitted since the
// last durable commit.
type book struct {
	positions map[string]domain.Position // keyed by token mint
	pending   []domain.PositionMemo
}

// Ledger is the process-lifetime position cache. Durable truth lives in the
// append-only memo stream; after the one-time reconstruction the in-memory
// state is authoritative and every mutation emits a pending memo for the
// caller to commit.
type Ledger struct {
	substrate domain.MemoSubstrate

	mu     sync.Mutex
	books  map[string]*book
	loaded map[string]bool

	group singleflight.Group
	now   func() time.Time
	log   zerolog.Logger
}

// NewLedger creates a new position ledger
func NewLedger(substrate domain.MemoSubstrate, log zerolog.Logger) *Ledger {
	return &Ledger{
		substrate: substrate,
		books:     make(map[string]*book),
		loaded:    make(map[string]bool),
		now:       time.Now,
		log:       log.With().Str("service", "ledger").Logger(),
	}
}

func bookKey(wallet string, vault domain.VaultID) string {
	return wallet + "|" + string(vault)
}

// LoadOnce reconstructs positions from memo history exactly once per
// wallet+vault per process lifetime. Concurrent first access is collapsed by
// singleflight so the history is never replayed twice. Reconstruction
// failure degrades to an empty position set rather than failing the caller.
func (l *Ledger) LoadOnce(ctx context.Context, wallet string, vault domain.VaultID) {
	key := bookKey(wallet, vault)

	l.mu.Lock()
	if l.loaded[key] {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.group.Do(key, func() (interface{}, error) {
		l.mu.Lock()
		if l.loaded[key] {
			l.mu.Unlock()
			return nil, nil
		}
		l.mu.Unlock()

		positions := make(map[string]domain.Position)
		memos, err := l.substrate.Reconstruct(ctx, wallet, vault)
		if err != nil {
			l.log.Warn().Err(err).
				Str("wallet", wallet).
				Str("vault", string(vault)).
				Msg("memo reconstruction failed, starting from empty positions")
		} else {
			for _, m := range memos {
				domain.ApplyMemo(positions, m)
			}
		}

		l.mu.Lock()
		l.books[key] = &book{positions: positions}
		l.loaded[key] = true
		l.mu.Unlock()

		l.log.Debug().
			Str("wallet", wallet).
			Str("vault", string(vault)).
			Int("positions", len(positions)).
			Msg("position book loaded")
		return nil, nil
	})
}

// Positions returns a stable-ordered copy of the open positions.
func (l *Ledger) Positions(wallet string, vault domain.VaultID) []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.books[bookKey(wallet, vault)]
	if b == nil {
		return nil
	}
	out := make([]domain.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenMint < out[j].TokenMint })
	return out
}

// Value prices the open positions with the given mint->price map.
func (l *Ledger) Value(wallet string, vault domain.VaultID, prices map[string]float64) float64 {
	total := 0.0
	for _, p := range l.Positions(wallet, vault) {
		total += p.Amount * prices[p.TokenMint]
	}
	return total
}

// ApplyDeposit adds to a position with weighted-average entry price math and
// queues the matching pending memo.
func (l *Ledger) ApplyDeposit(wallet string, vault domain.VaultID, mint, symbol string, amount, price float64) domain.PositionMemo {
	memo := domain.PositionMemo{
		Op:        domain.MemoDeposit,
		TokenMint: mint,
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Timestamp: l.now(),
	}
	l.apply(wallet, vault, memo)
	return memo
}

// ApplyWithdraw reduces a position proportionally and queues the matching
// pending memo. Positions decayed below the dust epsilon are removed.
func (l *Ledger) ApplyWithdraw(wallet string, vault domain.VaultID, mint string, amount float64) domain.PositionMemo {
	memo := domain.PositionMemo{
		Op:        domain.MemoWithdraw,
		TokenMint: mint,
		Amount:    amount,
		Timestamp: l.now(),
	}
	l.apply(wallet, vault, memo)
	return memo
}

func (l *Ledger) apply(wallet string, vault domain.VaultID, memo domain.PositionMemo) {
	key := bookKey(wallet, vault)
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.books[key]
	if b == nil {
		b = &book{positions: make(map[string]domain.Position)}
		l.books[key] = b
	}
	domain.ApplyMemo(b.positions, memo)
	b.pending = append(b.pending, memo)
}

// DrainPending returns and clears the memos queued since the last drain.
// The caller owns building and submitting the durable commit transaction.
func (l *Ledger) DrainPending(wallet string, vault domain.VaultID) []domain.PositionMemo {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.books[bookKey(wallet, vault)]
	if b == nil || len(b.pending) == 0 {
		return nil
	}
	pending := b.pending
	b.pending = nil
	return pending
}
