// Package chain implements the reward-chain engine: a periodic settlement
// cycle that consumes mint events from the external NFT ledger, attributes a
// halving block reward, records merkle-rooted blocks and mint transactions
// in an append-only hash chain, and fans the payouts out to the external
// coin ledger.
package chain

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/foundation/hash"
	"github.com/memechain/minter/foundation/merkle"
)

// disabledBits is the header difficulty encoding with proof of work
// permanently turned off.
const disabledBits uint32 = 0xffffffff

// EventHandler defines a function that is called when events occur in the
// processing of a settlement cycle.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to construct the chain
// service.
type Config struct {
	Store           *db.Store
	NFT             NFTLedger
	Coin            CoinLedger
	Clock           clockwork.Clock
	EvHandler       EventHandler
	AdminAccount    db.Account
	TreasuryAccount db.Account
	TeamFeePct      uint64   // % in e8s
	TreasuryFeePct  uint64   // % in e8s
	RewardTiers     []uint64 // %s of the distributable pool in e8s, best rank first
	InitBlockReward uint64
	BlockInterval   time.Duration
	HalvingPeriod   time.Duration
	MaxRaffleOwners int
}

// Service manages the reward chain. One Process call performs one complete
// settlement cycle; the Scheduler is responsible for running cycles on the
// block interval.
type Service struct {
	store            *db.Store
	nft              NFTLedger
	coin             CoinLedger
	clock            clockwork.Clock
	ev               EventHandler
	adminAccount     db.Account
	treasuryAccount  db.Account
	teamFeePct       uint64
	treasuryFeePct   uint64
	rewardTiers      []uint64
	initReward       uint64
	blocksPerHalving uint64
	maxRaffleOwners  int
}

// New constructs the chain service from the specified configuration.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.NFT == nil {
		return nil, errors.New("nft ledger is required")
	}
	if cfg.Coin == nil {
		return nil, errors.New("coin ledger is required")
	}
	if cfg.BlockInterval <= 0 {
		return nil, errors.New("block interval must be greater than 0")
	}
	if cfg.HalvingPeriod < cfg.BlockInterval {
		return nil, errors.New("halving period must cover at least one block")
	}
	if cfg.TeamFeePct+cfg.TreasuryFeePct > 100_000_000 {
		return nil, errors.New("fees exceed the block reward")
	}

	var tiersTotal uint64
	for _, tier := range cfg.RewardTiers {
		tiersTotal += tier
	}
	if tiersTotal > 100_000_000 {
		return nil, errors.New("reward tiers exceed the distributable pool")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	initReward := cfg.InitBlockReward
	if initReward == 0 {
		initReward = InitBlockReward
	}

	maxRaffleOwners := cfg.MaxRaffleOwners
	if maxRaffleOwners == 0 {
		maxRaffleOwners = defaultMaxRaffleOwners
	}

	s := Service{
		store:            cfg.Store,
		nft:              cfg.NFT,
		coin:             cfg.Coin,
		clock:            clock,
		ev:               ev,
		adminAccount:     cfg.AdminAccount,
		treasuryAccount:  cfg.TreasuryAccount,
		teamFeePct:       cfg.TeamFeePct,
		treasuryFeePct:   cfg.TreasuryFeePct,
		rewardTiers:      cfg.RewardTiers,
		initReward:       initReward,
		blocksPerHalving: uint64(cfg.HalvingPeriod / cfg.BlockInterval),
		maxRaffleOwners:  maxRaffleOwners,
	}

	return &s, nil
}

// Store returns the underlying chain store for the query surface.
func (s *Service) Store() *db.Store {
	return s.store
}

// =============================================================================

// Process performs one complete settlement cycle: consume new mint events,
// attribute the block reward, append the block and its transactions to the
// chain, commit the chain bookkeeping value and pay the rewards out.
//
// External call failures degrade the cycle (fewer winners, skipped payouts)
// but never fail it. A returned error means a storage write failed after
// events were consumed; the caller must treat that as fatal and stop
// scheduling cycles, since a partially committed cycle cannot be resumed.
func (s *Service) Process(ctx context.Context) error {
	chain := s.store.Chain()

	// The cycle's notion of "now" is fixed up front. Log entries at or past
	// this cutoff belong to a later cycle even if the external ledger keeps
	// growing while we read it.
	cutoff := s.clock.Now().UTC()
	cutoffSec := uint32(cutoff.Unix())

	// 1st: collect all the NFTs minted since the last processed log entry.
	// The cursor inside the local chain copy advances as entries are
	// consumed and is only committed with the rest of the cycle.
	events := s.readMintEvents(ctx, uint64(cutoff.UnixNano()), &chain)

	// 2nd: attribute the reward pool. Minted NFTs pay the top minters by
	// tier; an empty window raffles the pool to current owners instead.
	pool := chain.AccumulatedReward + s.Reward(chain.Height)
	chain.AccumulatedReward = 0

	var payouts []payout
	if len(events) > 0 {
		payouts = s.attributeMinters(ctx, events)
	} else {
		payouts = s.attributeRaffle(ctx)
	}

	// 3rd: build the transaction batch and drop the zero-amount lines so
	// they are never persisted or sent to the ledger.
	txs := nonZero(s.buildTransactions(payouts, pool, cutoffSec))

	txIDs := make([]hash.Hash, len(txs))
	for i, tx := range txs {
		txIDs[i] = tx.ID()
	}

	// 4th: assemble the block and link it to the previous one.
	block := db.Block{
		Height: chain.Height,
		Header: db.BlockHeader{
			Version:    db.BlockVersion,
			PrevBlock:  chain.LastBlockID,
			MerkleRoot: merkle.Root(txIDs),
			TimeStamp:  cutoffSec,
			Bits:       disabledBits,
			Nonce:      nonce(),
		},
		TxIDs: txIDs,
	}

	blockID := block.ID()
	s.ev("chain: process: block[%s] added at height[%d] with txs[%d]", blockID, block.Height, len(txIDs))

	// 5th: persist the block and its transactions.
	if err := s.store.SaveBlock(blockID, block); err != nil {
		return fmt.Errorf("saving block at height %d: %w", block.Height, err)
	}

	for i, tx := range txs {
		if err := s.store.SaveTx(txIDs[i], tx); err != nil {
			return fmt.Errorf("saving transaction %s: %w", txIDs[i], err)
		}
	}

	// 6th: commit the chain bookkeeping value. This is the cycle's single
	// atomic state transition; everything before it is re-derivable,
	// everything after it is best effort.
	chain.Height++
	chain.LastBlockID = blockID

	if err := s.store.SetChain(chain); err != nil {
		return fmt.Errorf("committing chain state: %w", err)
	}

	// 7th: mint the coins. Failures are logged and recovered out-of-band
	// from the persisted transaction log; the chain commit above stands.
	s.distribute(ctx, txs)

	return nil
}

// =============================================================================

// nonZero filters out the zero-amount transactions. Zero fee lines are legal
// build results but are never persisted or distributed.
func nonZero(txs []db.Tx) []db.Tx {
	keep := make([]db.Tx, 0, len(txs))
	for _, tx := range txs {
		if tx.Amount > 0 {
			keep = append(keep, tx)
		}
	}
	return keep
}

// nonce returns a fresh random value for the cosmetic block header nonce.
func nonce() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("reading entropy for block nonce: %s", err))
	}
	return binary.BigEndian.Uint32(b[:])
}
