package merkle_test

import (
	"testing"

	"github.com/memechain/minter/foundation/hash"
	"github.com/memechain/minter/foundation/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// pair computes one interior node the way the tree does.
func pair(left hash.Hash, right hash.Hash) hash.Hash {
	data := make([]byte, 0, hash.Size*2)
	data = append(data, left[:]...)
	data = append(data, right[:]...)
	return hash.Sum(data)
}

// =============================================================================

func Test_Root(t *testing.T) {
	a := hash.Sum([]byte("a"))
	b := hash.Sum([]byte("b"))
	c := hash.Sum([]byte("c"))

	t.Log("Given the need to compute merkle roots over transaction batches.")
	{
		t.Logf("\tTest 0:\tWhen the batch is empty.")
		{
			if root := merkle.Root(nil); root != hash.Zero {
				t.Fatalf("\t%s\tTest 0:\tShould produce the zero hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the zero hash.", success)
		}

		t.Logf("\tTest 1:\tWhen the batch holds a single id.")
		{
			if root := merkle.Root([]hash.Hash{a}); root != a {
				t.Fatalf("\t%s\tTest 1:\tShould produce the id itself.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould produce the id itself.", success)
		}

		t.Logf("\tTest 2:\tWhen the batch holds two ids.")
		{
			if root := merkle.Root([]hash.Hash{a, b}); root != pair(a, b) {
				t.Fatalf("\t%s\tTest 2:\tShould double-hash the concatenated pair.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould double-hash the concatenated pair.", success)
		}

		t.Logf("\tTest 3:\tWhen the batch holds an odd number of ids.")
		{
			exp := pair(pair(a, b), pair(c, c))

			if root := merkle.Root([]hash.Hash{a, b, c}); root != exp {
				t.Fatalf("\t%s\tTest 3:\tShould pair the odd leaf against itself.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould pair the odd leaf against itself.", success)
		}

		t.Logf("\tTest 4:\tWhen the batch order changes.")
		{
			if merkle.Root([]hash.Hash{a, b, c}) == merkle.Root([]hash.Hash{c, b, a}) {
				t.Fatalf("\t%s\tTest 4:\tShould produce a different root.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould produce a different root.", success)
		}
	}
}
