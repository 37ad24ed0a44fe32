package public

import (
	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/business/core/chain/db"
)

// chainInfo is the response for the chain status query.
type chainInfo struct {
	Height            uint32 `json:"height"`
	LastBlockID       string `json:"last_block_id"`
	AccumulatedReward uint64 `json:"accumulated_reward"`
	NextLogCursor     uint64 `json:"next_log_cursor"`
	NextReward        uint64 `json:"next_reward"`
	SchedulerStatus   string `json:"scheduler_status"`
	TotalTransactions int    `json:"total_transactions"`
}

// block is the response shape for block lookups.
type block struct {
	ID     string      `json:"id"`
	Height uint32      `json:"height"`
	Header blockHeader `json:"header"`
	TxIDs  []string    `json:"txs"`
}

type blockHeader struct {
	Version    uint32 `json:"version"`
	PrevBlock  string `json:"prev_block"`
	MerkleRoot string `json:"merkle_root"`
	TimeStamp  uint32 `json:"timestamp"`
	Bits       uint32 `json:"bits"`
	Nonce      uint32 `json:"nonce"`
}

func toBlock(id string, blk db.Block) block {
	txIDs := make([]string, len(blk.TxIDs))
	for i, txID := range blk.TxIDs {
		txIDs[i] = txID.String()
	}

	return block{
		ID:     id,
		Height: blk.Height,
		Header: blockHeader{
			Version:    blk.Header.Version,
			PrevBlock:  blk.Header.PrevBlock.String(),
			MerkleRoot: blk.Header.MerkleRoot.String(),
			TimeStamp:  blk.Header.TimeStamp,
			Bits:       blk.Header.Bits,
			Nonce:      blk.Header.Nonce,
		},
		TxIDs: txIDs,
	}
}

// txEvent is the flattened, human readable transaction form used by the
// paginated audit query.
type txEvent struct {
	ID        string `json:"id"`
	Version   uint32 `json:"version"`
	TimeStamp uint32 `json:"timestamp"`
	Type      string `json:"type"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Reason    string `json:"reason"`
}

func toTxEvents(recs []db.TxRecord) []txEvent {
	events := make([]txEvent, len(recs))
	for i, rec := range recs {
		events[i] = txEvent{
			ID:        rec.ID.String(),
			Version:   rec.Tx.Version,
			TimeStamp: rec.Tx.TimeStamp,
			Type:      "Mint",
			To:        rec.Tx.To.String(),
			Amount:    rec.Tx.Amount,
			Reason:    rec.Tx.Reason.String(),
		}
	}
	return events
}

// txList is the paginated response for the transaction audit query.
type txList struct {
	Txs   []txEvent `json:"txs"`
	Total int       `json:"total"`
}

// schedulerStatus renders the scheduler state for the chain status query.
func schedulerStatus(sched *chain.Scheduler) string {
	if sched == nil {
		return string(chain.StatusIdle)
	}
	return string(sched.Status())
}
