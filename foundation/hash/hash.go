// Package hash provides the double-SHA256 content addressing primitive used
// for block and transaction identity.
package hash

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the number of bytes in a hash.
const Size = 32

// Hash represents a double-SHA256 digest. The zero value is the genesis
// previous-block hash.
type Hash [Size]byte

// Zero is the all-zero hash used for genesis links and empty merkle roots.
var Zero Hash

// Sum computes SHA256(SHA256(data)).
func Sum(data []byte) Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// IsZero reports whether the hash is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// String returns the 0x prefixed hex encoding of the hash.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements encoding.TextMarshaler so hashes render as hex in
// JSON documents and map keys.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(h[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return err
	}

	if len(b) != Size {
		return fmt.Errorf("invalid hash length %d", len(b))
	}

	copy(h[:], b)
	return nil
}
