// Package merkle computes the merkle root over a batch of transaction ids
// for inclusion in a block header.
package merkle

import "github.com/memechain/minter/foundation/hash"

// Root computes the merkle root of the specified transaction ids by
// recursive pairwise double-hashing. An empty batch yields the zero hash and
// a single id is its own root. An odd leaf at any level is paired against
// itself.
func Root(ids []hash.Hash) hash.Hash {
	switch len(ids) {
	case 0:
		return hash.Zero

	case 1:
		return ids[0]
	}

	branches := make([]hash.Hash, 0, (len(ids)+1)/2)

	for i := 0; i < len(ids); i += 2 {
		left := ids[i]
		right := left
		if i+1 < len(ids) {
			right = ids[i+1]
		}

		data := make([]byte, 0, hash.Size*2)
		data = append(data, left[:]...)
		data = append(data, right[:]...)

		branches = append(branches, hash.Sum(data))
	}

	return Root(branches)
}
