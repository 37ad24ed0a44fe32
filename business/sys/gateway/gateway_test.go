package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/business/sys/gateway"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Gateway(t *testing.T) {
	t.Log("Given the need to talk to the external ledger gateways.")
	{
		t.Logf("\tTest 0:\tWhen reading the block log.")
		{
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/icrc3/blocks" {
					http.NotFound(w, r)
					return
				}

				var req struct {
					Start  uint64 `json:"start"`
					Length int    `json:"length"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				if req.Start != 5 || req.Length != 1024 {
					http.Error(w, "wrong cursor", http.StatusBadRequest)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"blocks":[{"id":5,"block":{"Map":{"btype":{"Text":"7mint"},"ts":{"Nat":42}}}}]}`))
			}))
			defer srv.Close()

			gw, err := gateway.New(gateway.Config{NFTURL: srv.URL, CoinURL: srv.URL})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the gateway: %v", failed, err)
			}

			entries, err := gw.ReadLog(context.Background(), 5, 1024)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the log: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to read the log.", success)

			if len(entries) != 1 || entries[0].ID != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould decode the log entry ids.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould decode the log entry ids.", success)

			btype, ok := entries[0].Value.Field("btype")
			if !ok {
				t.Fatalf("\t%s\tTest 0:\tShould decode the entry payload.", failed)
			}
			if text, ok := btype.AsText(); !ok || text != "7mint" {
				t.Fatalf("\t%s\tTest 0:\tShould decode the tagged payload fields.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould decode the tagged payload fields.", success)
		}

		t.Logf("\tTest 1:\tWhen resolving owners and supply.")
		{
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")

				switch r.URL.Path {
				case "/v1/icrc7/owner_of":
					w.Write([]byte(`{"owners":[{"owner":"alice"},null]}`))
				case "/v1/icrc7/total_supply":
					w.Write([]byte(`{"total_supply":12}`))
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()

			gw, err := gateway.New(gateway.Config{NFTURL: srv.URL, CoinURL: srv.URL})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the gateway: %v", failed, err)
			}

			owners, err := gw.OwnersOf(context.Background(), []uint64{1, 2})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to resolve owners: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to resolve owners.", success)

			if len(owners) != 2 || owners[0] == nil || owners[0].Owner != "alice" || owners[1] != nil {
				t.Fatalf("\t%s\tTest 1:\tShould report unknown tokens as nil.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould report unknown tokens as nil.", success)

			supply, err := gw.TotalSupply(context.Background())
			if err != nil || supply != 12 {
				t.Fatalf("\t%s\tTest 1:\tShould report the collection size, got %d: %v", failed, supply, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report the collection size.", success)
		}

		t.Logf("\tTest 2:\tWhen minting coin transfers.")
		{
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/icrc1/transfer" {
					http.NotFound(w, r)
					return
				}

				var req struct {
					To     db.Account `json:"to"`
					Amount uint64     `json:"amount"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}

				w.Header().Set("Content-Type", "application/json")

				// The ledger rejects in-band with a 200 status.
				if req.Amount == 0 {
					w.Write([]byte(`{"error":"zero amount"}`))
					return
				}
				w.Write([]byte(`{"tx":77}`))
			}))
			defer srv.Close()

			gw, err := gateway.New(gateway.Config{NFTURL: srv.URL, CoinURL: srv.URL})
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct the gateway: %v", failed, err)
			}

			tx, err := gw.Transfer(context.Background(), db.Account{Owner: "alice"}, 100, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mint a transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to mint a transfer.", success)

			if tx != 77 {
				t.Fatalf("\t%s\tTest 2:\tShould return the ledger tx index, got %d.", failed, tx)
			}
			t.Logf("\t%s\tTest 2:\tShould return the ledger tx index.", success)

			if _, err := gw.Transfer(context.Background(), db.Account{Owner: "alice"}, 0, 0); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould surface in-band rejections as errors.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould surface in-band rejections as errors.", success)
		}
	}
}
