package domain

// DustEpsilon is the threshold below which a position is considered closed
// and removed from the ledger.
const DustEpsilon = 1e-9

// ApplyMemo folds one position delta into a position map keyed by mint.
// Deposits use weighted-average entry price; withdrawals reduce the amount
// proportionally and drop the position once it decays below DustEpsilon.
// The same math backs the live ledger and memo-history reconstruction, so the
// two can never disagree.
func ApplyMemo(positions map[string]Position, memo PositionMemo) {
	switch memo.Op {
	case MemoDeposit:
		pos, ok := positions[memo.TokenMint]
		if !ok {
			positions[memo.TokenMint] = Position{
				TokenMint:      memo.TokenMint,
				Symbol:         memo.Symbol,
				Amount:         memo.Amount,
				EntryPrice:     memo.Price,
				EntryTimestamp: memo.Timestamp,
			}
			return
		}
		total := pos.Amount + memo.Amount
		if total <= DustEpsilon {
			delete(positions, memo.TokenMint)
			return
		}
		pos.EntryPrice = (pos.Amount*pos.EntryPrice + memo.Amount*memo.Price) / total
		pos.Amount = total
		positions[memo.TokenMint] = pos
	case MemoWithdraw:
		pos, ok := positions[memo.TokenMint]
		if !ok {
			return
		}
		pos.Amount -= memo.Amount
		if pos.Amount <= DustEpsilon {
			delete(positions, memo.TokenMint)
			return
		}
		positions[memo.TokenMint] = pos
	}
}

// FoldMemos replays an append-only memo history into the set of open
// positions it describes.
func FoldMemos(memos []PositionMemo) []Position {
	positions := make(map[string]Position)
	for _, m := range memos {
		ApplyMemo(positions, m)
	}
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		out = append(out, p)
	}
	return out
}
