package chain

import (
	"context"

	"github.com/memechain/minter/business/core/chain/db"
	"golang.org/x/sync/errgroup"
)

// maxTransferCalls bounds how many coin ledger calls are in flight at once.
// Each chunk is fully joined before the next chunk is issued; no ordering
// holds across a chunk's completions.
const maxTransferCalls = 4

// distribute executes the batch's mint transactions against the external
// coin ledger, best effort. Every failed transfer is logged independently
// and never retried within the cycle: the persisted transaction log is the
// source of truth and failed payouts are replayed out-of-band.
func (s *Service) distribute(ctx context.Context, txs []db.Tx) {
	var pending []db.Tx
	for _, tx := range txs {
		if tx.Amount > 0 {
			pending = append(pending, tx)
		}
	}

	for start := 0; start < len(pending); start += maxTransferCalls {
		end := min(start+maxTransferCalls, len(pending))

		var g errgroup.Group
		for _, tx := range pending[start:end] {
			g.Go(func() error {
				createdAt := uint64(tx.TimeStamp) * 1_000_000_000

				ledgerTx, err := s.coin.Transfer(ctx, tx.To, tx.Amount, createdAt)
				if err != nil {
					s.ev("chain: distribute: ERROR: transfer of %d to %s: %s", tx.Amount, tx.To, err)
					return nil
				}

				s.ev("chain: distribute: coin minted: amount[%d] to[%s] ledgerTx[%d]", tx.Amount, tx.To, ledgerTx)
				return nil
			})
		}

		g.Wait()
	}
}

// ReplayPayouts re-sends the transfers for a range of the persisted
// transaction log through the distributor. This is the operator's recovery
// path for payouts that failed after their cycle committed. It returns the
// number of transactions replayed.
func (s *Service) ReplayPayouts(ctx context.Context, offset int, size int) int {
	recs, _ := s.store.TxSlice(offset, size)

	txs := make([]db.Tx, 0, len(recs))
	for _, rec := range recs {
		txs = append(txs, rec.Tx)
	}

	s.ev("chain: replayPayouts: replaying %d transactions from offset[%d]", len(txs), offset)
	s.distribute(ctx, txs)

	return len(txs)
}
