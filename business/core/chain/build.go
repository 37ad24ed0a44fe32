package chain

import "github.com/memechain/minter/business/core/chain/db"

// pctScale is the fixed point scale for fee and tier percentages: a value of
// 100_000_000 means 100%.
const pctScale uint64 = 100_000_000

// buildTransactions turns the attributed payouts into the cycle's mint
// transaction batch. The team and treasury fee lines always come first, in
// that order; the remainder of the pool is split among the payouts by their
// attributed percentage. Zero-amount lines are legal results here and are
// filtered by the caller before persistence and distribution.
func (s *Service) buildTransactions(payouts []payout, pool uint64, timestamp uint32) []db.Tx {
	teamFee := pool * s.teamFeePct / pctScale
	treasuryFee := pool * s.treasuryFeePct / pctScale

	txs := []db.Tx{
		{
			Version:   db.TxVersion,
			To:        s.adminAccount,
			Amount:    teamFee,
			Reason:    db.MintReason{Kind: db.ReasonTeamFee},
			TimeStamp: timestamp,
		},
		{
			Version:   db.TxVersion,
			To:        s.treasuryAccount,
			Amount:    treasuryFee,
			Reason:    db.MintReason{Kind: db.ReasonTreasuryFee},
			TimeStamp: timestamp,
		},
	}

	distributable := pool - (teamFee + treasuryFee)

	for _, p := range payouts {
		txs = append(txs, db.Tx{
			Version:   db.TxVersion,
			To:        p.to,
			Amount:    distributable * p.pct / pctScale,
			Reason:    p.reason,
			TimeStamp: timestamp,
		})
	}

	return txs
}
