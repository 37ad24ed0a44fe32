package db_test

import (
	"testing"

	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/business/core/chain/db/storage"
	"github.com/memechain/minter/foundation/hash"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// testTx constructs a distinct transaction for the specified amount.
func testTx(amount uint64) db.Tx {
	return db.Tx{
		Version:   db.TxVersion,
		To:        db.Account{Owner: "alice"},
		Amount:    amount,
		Reason:    db.MintReason{Kind: db.ReasonNftMinter, Tokens: []uint64{amount}},
		TimeStamp: 1700000000,
	}
}

// =============================================================================

func Test_TxLog(t *testing.T) {
	t.Log("Given the need to keep an ordered, deduplicated transaction log.")
	{
		t.Logf("\tTest 0:\tWhen saving and paging transactions.")
		{
			store, err := db.New(storage.NewMemory())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to construct the store.", success)

			txs := []db.Tx{testTx(100), testTx(200), testTx(300)}
			for _, tx := range txs {
				if err := store.SaveTx(tx.ID(), tx); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to save a transaction: %v", failed, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save transactions.", success)

			// Saving the same transaction again must not grow the log.
			if err := store.SaveTx(txs[1].ID(), txs[1]); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to re-save a transaction: %v", failed, err)
			}
			if store.TxCount() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the count at 3 after a duplicate save, got %d.", failed, store.TxCount())
			}
			t.Logf("\t%s\tTest 0:\tShould keep the count at 3 after a duplicate save.", success)

			recs, total := store.TxSlice(1, 2)
			if total != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould report total 3, got %d.", failed, total)
			}
			if len(recs) != 2 || recs[0].Tx.Amount != 200 || recs[1].Tx.Amount != 300 {
				t.Fatalf("\t%s\tTest 0:\tShould page in insertion order.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould page in insertion order.", success)

			if recs, _ := store.TxSlice(5, 2); recs != nil {
				t.Fatalf("\t%s\tTest 0:\tShould return nothing past the end of the log.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return nothing past the end of the log.", success)

			if recs, _ := store.TxSlice(2, 10); len(recs) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould clamp a page that overruns the log.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould clamp a page that overruns the log.", success)

			if _, exists := store.TxByID(txs[0].ID()); !exists {
				t.Fatalf("\t%s\tTest 0:\tShould find a transaction by id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find a transaction by id.", success)
		}
	}
}

func Test_Blocks(t *testing.T) {
	t.Log("Given the need to index blocks by id and by height.")
	{
		t.Logf("\tTest 0:\tWhen saving and looking up blocks.")
		{
			store, err := db.New(storage.NewMemory())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the store: %v", failed, err)
			}

			block := db.Block{
				Height: 7,
				Header: db.BlockHeader{
					Version:   db.BlockVersion,
					TimeStamp: 1700000000,
					Bits:      0xffffffff,
				},
				TxIDs: []hash.Hash{testTx(100).ID()},
			}

			id := block.ID()
			if err := store.SaveBlock(id, block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save a block.", success)

			if got, exists := store.BlockByID(id); !exists || got.Height != 7 {
				t.Fatalf("\t%s\tTest 0:\tShould find the block by id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the block by id.", success)

			if got, exists := store.BlockByHeight(7); !exists || got.ID() != id {
				t.Fatalf("\t%s\tTest 0:\tShould find the block by height.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the block by height.", success)

			if _, exists := store.BlockByHeight(8); exists {
				t.Fatalf("\t%s\tTest 0:\tShould not find a block at an unused height.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not find a block at an unused height.", success)
		}
	}
}

func Test_Restore(t *testing.T) {
	t.Log("Given the need to restore committed state from storage.")
	{
		t.Logf("\tTest 0:\tWhen rebuilding a store over existing memory storage.")
		{
			strg := storage.NewMemory()

			store, err := db.New(strg)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the store: %v", failed, err)
			}

			writeCommittedCycle(t, store, "Test 0")

			restored, err := db.New(strg)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to restore the store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to restore the store.", success)

			checkRestored(t, store, restored, "Test 0")
		}

		t.Logf("\tTest 1:\tWhen rebuilding a store over existing disk storage.")
		{
			dir := t.TempDir()

			strg, err := storage.NewDisk(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to open disk storage: %v", failed, err)
			}

			store, err := db.New(strg)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the store: %v", failed, err)
			}

			writeCommittedCycle(t, store, "Test 1")

			if err := store.Close(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to close the store: %v", failed, err)
			}

			strg2, err := storage.NewDisk(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to reopen disk storage: %v", failed, err)
			}

			restored, err := db.New(strg2)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to restore the store: %v", failed, err)
			}
			defer restored.Close()
			t.Logf("\t%s\tTest 1:\tShould be able to restore the store.", success)

			checkRestored(t, store, restored, "Test 1")
		}
	}
}

// writeCommittedCycle puts one block, two transactions and a chain value
// through the store the way a settlement cycle commit does.
func writeCommittedCycle(t *testing.T, store *db.Store, testID string) {
	txs := []db.Tx{testTx(100), testTx(200)}

	txIDs := make([]hash.Hash, len(txs))
	for i, tx := range txs {
		txIDs[i] = tx.ID()
	}

	block := db.Block{
		Height: 0,
		Header: db.BlockHeader{Version: db.BlockVersion, TimeStamp: 1700000000, Bits: 0xffffffff},
		TxIDs:  txIDs,
	}

	if err := store.SaveBlock(block.ID(), block); err != nil {
		t.Fatalf("\t%s\t%s:\tShould be able to save the block: %v", failed, testID, err)
	}

	for i, tx := range txs {
		if err := store.SaveTx(txIDs[i], tx); err != nil {
			t.Fatalf("\t%s\t%s:\tShould be able to save a transaction: %v", failed, testID, err)
		}
	}

	chain := db.Chain{Height: 1, LastBlockID: block.ID(), NextLogCursor: 42}
	if err := store.SetChain(chain); err != nil {
		t.Fatalf("\t%s\t%s:\tShould be able to commit the chain value: %v", failed, testID, err)
	}
}

// checkRestored compares the restored store against the original.
func checkRestored(t *testing.T, original *db.Store, restored *db.Store, testID string) {
	if restored.Chain() != original.Chain() {
		t.Fatalf("\t%s\t%s:\tShould restore the chain value.", failed, testID)
	}
	t.Logf("\t%s\t%s:\tShould restore the chain value.", success, testID)

	if restored.TxCount() != original.TxCount() {
		t.Fatalf("\t%s\t%s:\tShould restore every transaction.", failed, testID)
	}
	t.Logf("\t%s\t%s:\tShould restore every transaction.", success, testID)

	origRecs, _ := original.TxSlice(0, original.TxCount())
	restRecs, _ := restored.TxSlice(0, restored.TxCount())
	for i := range origRecs {
		if restRecs[i].ID != origRecs[i].ID {
			t.Fatalf("\t%s\t%s:\tShould restore the transaction log order.", failed, testID)
		}
	}
	t.Logf("\t%s\t%s:\tShould restore the transaction log order.", success, testID)

	if _, exists := restored.BlockByID(original.Chain().LastBlockID); !exists {
		t.Fatalf("\t%s\t%s:\tShould restore the committed block.", failed, testID)
	}
	t.Logf("\t%s\t%s:\tShould restore the committed block.", success, testID)
}
