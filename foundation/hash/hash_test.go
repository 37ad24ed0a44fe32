package hash_test

import (
	"crypto/sha256"
	"testing"

	"github.com/memechain/minter/foundation/hash"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Sum(t *testing.T) {
	t.Log("Given the need to validate double-SHA256 content addressing.")
	{
		t.Logf("\tTest 0:\tWhen hashing a payload.")
		{
			data := []byte("the quick brown fox")

			first := sha256.Sum256(data)
			second := sha256.Sum256(first[:])

			h := hash.Sum(data)
			if h != hash.Hash(second) {
				t.Fatalf("\t%s\tTest 0:\tShould compute sha256 over sha256 of the payload.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould compute sha256 over sha256 of the payload.", success)

			if h.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould not report a real digest as zero.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not report a real digest as zero.", success)

			if !hash.Zero.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould report the zero hash as zero.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the zero hash as zero.", success)
		}
	}
}

func Test_TextRoundTrip(t *testing.T) {
	t.Log("Given the need to render hashes as hex and read them back.")
	{
		t.Logf("\tTest 0:\tWhen round tripping a digest through its text form.")
		{
			h := hash.Sum([]byte("block payload"))

			text, err := h.MarshalText()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the hash: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to marshal the hash.", success)

			if string(text) != h.String() {
				t.Fatalf("\t%s\tTest 0:\tShould render the same hex from both forms.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould render the same hex from both forms.", success)

			var back hash.Hash
			if err := back.UnmarshalText(text); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to unmarshal the hash: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to unmarshal the hash.", success)

			if back != h {
				t.Fatalf("\t%s\tTest 0:\tShould get back the original digest.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the original digest.", success)

			if err := back.UnmarshalText([]byte("0x00ff")); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a short hex value.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a short hex value.", success)
		}
	}
}
