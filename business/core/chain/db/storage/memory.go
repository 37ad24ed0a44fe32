package storage

import (
	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/foundation/hash"
)

// Memory implements the db.Storage interface entirely in memory. It exists
// for tests and ephemeral runs where durability is not wanted.
type Memory struct {
	chain    db.Chain
	hasChain bool
	blocks   []db.BlockRecord
	txs      []db.TxRecord
	blockIDs map[hash.Hash]int
}

// NewMemory constructs a Memory value for use.
func NewMemory() *Memory {
	return &Memory{
		blockIDs: make(map[hash.Hash]int),
	}
}

// Close has nothing to release.
func (m *Memory) Close() error {
	return nil
}

// WriteBlock stores the block record.
func (m *Memory) WriteBlock(rec db.BlockRecord) error {
	if i, exists := m.blockIDs[rec.ID]; exists {
		m.blocks[i] = rec
		return nil
	}

	m.blockIDs[rec.ID] = len(m.blocks)
	m.blocks = append(m.blocks, rec)
	return nil
}

// WriteTx appends the transaction record.
func (m *Memory) WriteTx(rec db.TxRecord) error {
	m.txs = append(m.txs, rec)
	return nil
}

// WriteChain replaces the chain bookkeeping value.
func (m *Memory) WriteChain(chain db.Chain) error {
	m.chain = chain
	m.hasChain = true
	return nil
}

// ReadChain returns the chain bookkeeping value if one was written.
func (m *Memory) ReadChain() (db.Chain, bool, error) {
	return m.chain, m.hasChain, nil
}

// ForEachBlock walks the stored blocks in write order.
func (m *Memory) ForEachBlock(fn func(rec db.BlockRecord) error) error {
	for _, rec := range m.blocks {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// ForEachTx walks the stored transactions in write order.
func (m *Memory) ForEachTx(fn func(rec db.TxRecord) error) error {
	for _, rec := range m.txs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
