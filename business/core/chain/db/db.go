// Package db maintains the chain bookkeeping value plus the block and
// transaction stores with their lookup indexes, backed by a pluggable
// storage implementation that keeps everything durable across restarts.
package db

import (
	"fmt"
	"sync"

	"github.com/memechain/minter/foundation/hash"
)

// Storage interface represents the behavior required to be implemented by
// any package providing durability for blocks, transactions and the chain
// bookkeeping value.
type Storage interface {
	WriteBlock(rec BlockRecord) error
	WriteTx(rec TxRecord) error
	WriteChain(chain Chain) error
	ReadChain() (Chain, bool, error)
	ForEachBlock(fn func(rec BlockRecord) error) error
	ForEachTx(fn func(rec TxRecord) error) error
	Close() error
}

// =============================================================================

// Store manages the in-memory indexes over chain data and writes every
// mutation through to storage. Within a cycle it is touched only by that
// cycle's goroutine; the mutex exists for the concurrent query surface.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	chain   Chain
	blocks  map[hash.Hash]Block
	heights map[uint32]hash.Hash
	txs     map[hash.Hash]Tx
	txOrder []hash.Hash
}

// New constructs a Store and restores all committed blocks, transactions and
// the chain value from storage.
func New(storage Storage) (*Store, error) {
	s := Store{
		storage: storage,
		blocks:  make(map[hash.Hash]Block),
		heights: make(map[uint32]hash.Hash),
		txs:     make(map[hash.Hash]Tx),
	}

	chain, exists, err := storage.ReadChain()
	if err != nil {
		return nil, fmt.Errorf("reading chain state: %w", err)
	}
	if exists {
		s.chain = chain
	}

	fn := func(rec BlockRecord) error {
		s.blocks[rec.ID] = rec.Block
		s.heights[rec.Block.Height] = rec.ID
		return nil
	}
	if err := storage.ForEachBlock(fn); err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}

	// The transaction log is replayed in insertion order, so the ordered
	// index comes back exactly as it was written.
	tfn := func(rec TxRecord) error {
		if _, exists := s.txs[rec.ID]; !exists {
			s.txOrder = append(s.txOrder, rec.ID)
		}
		s.txs[rec.ID] = rec.Tx
		return nil
	}
	if err := storage.ForEachTx(tfn); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}

	return &s, nil
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}

// =============================================================================

// Chain returns a copy of the current chain bookkeeping value.
func (s *Store) Chain() Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain
}

// SetChain atomically replaces the chain bookkeeping value. This is the last
// write of a cycle's commit: the new value only ever reflects a fully
// processed cycle.
func (s *Store) SetChain(chain Chain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.WriteChain(chain); err != nil {
		return err
	}

	s.chain = chain
	return nil
}

// =============================================================================

// SaveBlock persists the block keyed by its id and indexes it by height.
func (s *Store) SaveBlock(id hash.Hash, block Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.WriteBlock(BlockRecord{ID: id, Block: block}); err != nil {
		return err
	}

	s.blocks[id] = block
	s.heights[block.Height] = id
	return nil
}

// BlockByID returns the block stored under the specified id.
func (s *Store) BlockByID(id hash.Hash) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, exists := s.blocks[id]
	return block, exists
}

// BlockByHeight returns the block produced at the specified height.
func (s *Store) BlockByHeight(height uint32) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.heights[height]
	if !exists {
		return Block{}, false
	}

	block, exists := s.blocks[id]
	return block, exists
}

// =============================================================================

// SaveTx persists the transaction keyed by its id and appends the id to the
// ordered log used by the paginated audit queries. The append is idempotent:
// an id already present is stored once so pagination never drifts.
func (s *Store) SaveTx(id hash.Hash, tx Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txs[id]; exists {
		return nil
	}

	if err := s.storage.WriteTx(TxRecord{ID: id, Tx: tx}); err != nil {
		return err
	}

	s.txs[id] = tx
	s.txOrder = append(s.txOrder, id)
	return nil
}

// TxByID returns the transaction stored under the specified id.
func (s *Store) TxByID(id hash.Hash) (Tx, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.txs[id]
	return tx, exists
}

// TxSlice returns a page of transactions in insertion order along with the
// total number of stored transactions.
func (s *Store) TxSlice(offset int, size int) ([]TxRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.txOrder)

	if offset < 0 || size <= 0 || offset >= total {
		return nil, total
	}

	end := offset + size
	if end > total {
		end = total
	}

	recs := make([]TxRecord, 0, end-offset)
	for _, id := range s.txOrder[offset:end] {
		recs = append(recs, TxRecord{ID: id, Tx: s.txs[id]})
	}

	return recs, total
}

// TxCount returns the total number of stored transactions.
func (s *Store) TxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.txOrder)
}
