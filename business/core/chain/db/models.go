package db

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/memechain/minter/foundation/hash"
)

// Versions for the serialized forms of blocks and transactions.
const (
	BlockVersion uint32 = 1_00
	TxVersion    uint32 = 1_00
)

// =============================================================================

// SubAccount is the 32 byte discriminator that distinguishes accounts owned
// by the same principal. The zero value is the default sub-account.
type SubAccount [32]byte

// SubAccountFromText derives a sub-account from a well known name using a
// domain separated sha256, so the same name always maps to the same account.
func SubAccountFromText(text string) SubAccount {
	const domain = "str-id"

	h := sha256.New()
	h.Write([]byte{byte(len(domain))})
	h.Write([]byte(domain))
	h.Write([]byte(text))

	var sub SubAccount
	copy(sub[:], h.Sum(nil))
	return sub
}

// IsZero reports whether this is the default sub-account.
func (s SubAccount) IsZero() bool {
	return s == SubAccount{}
}

// MarshalText implements encoding.TextMarshaler.
func (s SubAccount) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(s[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SubAccount) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return err
	}

	if len(b) != len(s) {
		return fmt.Errorf("invalid sub-account length %d", len(b))
	}

	copy(s[:], b)
	return nil
}

// =============================================================================

// Account is the atomic unit of reward attribution: an owner principal plus
// an optional sub-account discriminator. Equality is structural, so the type
// is usable as a map key when aggregating mint events.
type Account struct {
	Owner      string     `json:"owner"`
	SubAccount SubAccount `json:"sub_account"`
}

// String renders the account as owner or owner.subaccount when a non default
// sub-account is present.
func (a Account) String() string {
	if a.SubAccount.IsZero() {
		return a.Owner
	}

	return fmt.Sprintf("%s.%x", a.Owner, a.SubAccount[:])
}

// =============================================================================

// ReasonKind is the tag explaining why a mint transaction was created.
type ReasonKind uint8

// Set of possible mint reasons. The values double as the one byte
// discriminant hashed into the transaction id.
const (
	ReasonTeamFee ReasonKind = iota
	ReasonTreasuryFee
	ReasonNftMinter
	ReasonRaffleWinner
)

// MintReason carries the reason tag plus, for nft-minter payouts, the token
// ids that earned the reward. Only the tag participates in the transaction
// id so the payload can grow without changing identity.
type MintReason struct {
	Kind   ReasonKind `json:"kind"`
	Tokens []uint64   `json:"tokens,omitempty"`
}

// String returns a human readable description for audit queries.
func (r MintReason) String() string {
	switch r.Kind {
	case ReasonTeamFee:
		return "team fee"

	case ReasonTreasuryFee:
		return "treasury fee"

	case ReasonNftMinter:
		const maxListed = 10

		ids := make([]string, 0, maxListed)
		for i, token := range r.Tokens {
			if i == maxListed {
				break
			}
			ids = append(ids, fmt.Sprintf("%d", token))
		}

		suffix := ""
		if len(r.Tokens) > maxListed {
			suffix = "..."
		}

		return fmt.Sprintf("nft minter: %s%s", strings.Join(ids, ","), suffix)

	case ReasonRaffleWinner:
		return "raffle winner"
	}

	return "unknown"
}

// =============================================================================

// Tx represents a single coin mint recorded by the chain. Transactions are
// immutable once stored and referenced by id from the owning block.
type Tx struct {
	Version   uint32     `json:"version"`
	To        Account    `json:"to"`
	Amount    uint64     `json:"amount"`
	Reason    MintReason `json:"reason"`
	TimeStamp uint32     `json:"timestamp"`
}

// ID computes the unique double-hash identity for the transaction. Only the
// recipient's effective sub-account takes part in the recipient encoding and
// the reason contributes its one byte discriminant.
func (tx Tx) ID() hash.Hash {
	data := make([]byte, 0, 4+len(tx.To.SubAccount)+8+1+4)

	data = binary.BigEndian.AppendUint32(data, tx.Version)
	data = append(data, tx.To.SubAccount[:]...)
	data = binary.BigEndian.AppendUint64(data, tx.Amount)
	data = append(data, byte(tx.Reason.Kind))
	data = binary.BigEndian.AppendUint32(data, tx.TimeStamp)

	return hash.Sum(data)
}

// TxRecord pairs a transaction with its computed id for storage and for the
// paginated audit queries.
type TxRecord struct {
	ID hash.Hash `json:"id"`
	Tx Tx        `json:"tx"`
}

// =============================================================================

// BlockHeader represents the common information required for each block. The
// bits field is permanently maximal since proof of work is disabled and the
// nonce is cosmetic only.
type BlockHeader struct {
	Version    uint32    `json:"version"`
	PrevBlock  hash.Hash `json:"prev_block"`
	MerkleRoot hash.Hash `json:"merkle_root"`
	TimeStamp  uint32    `json:"timestamp"`
	Bits       uint32    `json:"bits"`
	Nonce      uint32    `json:"nonce"`
}

// Block represents one settlement cycle's batch of mint transactions,
// anchored to the previous block by hash.
type Block struct {
	Height uint32      `json:"height"`
	Header BlockHeader `json:"header"`
	TxIDs  []hash.Hash `json:"txs"`
}

// ID computes the unique double-hash identity for the block from the big
// endian encodings of the height and header fields.
func (b Block) ID() hash.Hash {
	data := make([]byte, 0, 4+4+hash.Size+hash.Size+4+4+4)

	data = binary.BigEndian.AppendUint32(data, b.Height)
	data = binary.BigEndian.AppendUint32(data, b.Header.Version)
	data = append(data, b.Header.PrevBlock[:]...)
	data = append(data, b.Header.MerkleRoot[:]...)
	data = binary.BigEndian.AppendUint32(data, b.Header.TimeStamp)
	data = binary.BigEndian.AppendUint32(data, b.Header.Bits)
	data = binary.BigEndian.AppendUint32(data, b.Header.Nonce)

	return hash.Sum(data)
}

// BlockRecord pairs a block with its computed id for storage.
type BlockRecord struct {
	ID    hash.Hash `json:"id"`
	Block Block     `json:"block"`
}

// =============================================================================

// Chain is the singleton bookkeeping value for the reward chain. It is
// replaced atomically once per completed cycle and never partially updated.
// NextLogCursor only moves forward: an external log entry once processed is
// never reattributed to a later block.
type Chain struct {
	Height            uint32    `json:"height"`
	LastBlockID       hash.Hash `json:"last_block_id"`
	AccumulatedReward uint64    `json:"accumulated_reward"`
	NextLogCursor     uint64    `json:"next_log_cursor"`
}
