package chain

import (
	"context"

	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/foundation/genval"
)

// LogEntry is one entry from the external NFT ledger's append-only block
// log. The payload is dynamically shaped, so it stays a generic value until
// the reader decodes the fields it cares about.
type LogEntry struct {
	ID    uint64
	Value genval.Value
}

// MintEvent is a decoded "7mint" log entry: a new NFT token and the account
// that minted it, plus the reaction score attached at mint time.
type MintEvent struct {
	To        db.Account
	TokenID   uint64
	Reactions uint64
}

// NFTLedger represents the behavior required of the external NFT collection
// so mint events can be consumed and owners sampled.
type NFTLedger interface {
	ReadLog(ctx context.Context, start uint64, max int) ([]LogEntry, error)
	OwnersOf(ctx context.Context, tokenIDs []uint64) ([]*db.Account, error)
	MetadataOf(ctx context.Context, tokenIDs []uint64) ([]map[string]genval.Value, error)
	TotalSupply(ctx context.Context) (uint64, error)
}

// CoinLedger represents the behavior required of the external coin ledger so
// reward payouts can be minted. Transfer returns the ledger's transaction
// index on success.
type CoinLedger interface {
	Transfer(ctx context.Context, to db.Account, amount uint64, createdAt uint64) (uint64, error)
}
