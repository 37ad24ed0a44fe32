// Package gateway provides the HTTP client for the external NFT collection
// and coin ledger gateways. It implements the chain package's NFTLedger and
// CoinLedger interfaces so the engine never depends on the wire plumbing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/foundation/genval"
)

// Config represents the configuration required to construct a Gateway.
type Config struct {
	NFTURL  string
	CoinURL string
	Client  *http.Client
}

// Gateway manages the HTTP calls to the external ledgers.
type Gateway struct {
	nftURL  string
	coinURL string
	client  *http.Client
}

// New constructs a Gateway for the specified endpoints.
func New(cfg Config) (*Gateway, error) {
	if cfg.NFTURL == "" {
		return nil, errors.New("nft gateway url is required")
	}
	if cfg.CoinURL == "" {
		return nil, errors.New("coin gateway url is required")
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Gateway{
		nftURL:  cfg.NFTURL,
		coinURL: cfg.CoinURL,
		client:  client,
	}, nil
}

// =============================================================================
// chain.NFTLedger implementation.

// ReadLog requests a page of the collection's block log.
func (g *Gateway) ReadLog(ctx context.Context, start uint64, max int) ([]chain.LogEntry, error) {
	req := struct {
		Start  uint64 `json:"start"`
		Length int    `json:"length"`
	}{
		Start:  start,
		Length: max,
	}

	var resp struct {
		Blocks []struct {
			ID    uint64       `json:"id"`
			Block genval.Value `json:"block"`
		} `json:"blocks"`
	}

	if err := g.call(ctx, g.nftURL+"/v1/icrc3/blocks", req, &resp); err != nil {
		return nil, err
	}

	entries := make([]chain.LogEntry, len(resp.Blocks))
	for i, block := range resp.Blocks {
		entries[i] = chain.LogEntry{ID: block.ID, Value: block.Block}
	}

	return entries, nil
}

// OwnersOf resolves the current owners of the specified tokens. Unknown
// tokens come back nil.
func (g *Gateway) OwnersOf(ctx context.Context, tokenIDs []uint64) ([]*db.Account, error) {
	req := struct {
		TokenIDs []uint64 `json:"token_ids"`
	}{
		TokenIDs: tokenIDs,
	}

	var resp struct {
		Owners []*db.Account `json:"owners"`
	}

	if err := g.call(ctx, g.nftURL+"/v1/icrc7/owner_of", req, &resp); err != nil {
		return nil, err
	}

	return resp.Owners, nil
}

// MetadataOf resolves the current metadata of the specified tokens. Unknown
// tokens come back nil.
func (g *Gateway) MetadataOf(ctx context.Context, tokenIDs []uint64) ([]map[string]genval.Value, error) {
	req := struct {
		TokenIDs []uint64 `json:"token_ids"`
	}{
		TokenIDs: tokenIDs,
	}

	var resp struct {
		Metadata []map[string]genval.Value `json:"metadata"`
	}

	if err := g.call(ctx, g.nftURL+"/v1/icrc7/token_metadata", req, &resp); err != nil {
		return nil, err
	}

	return resp.Metadata, nil
}

// TotalSupply returns the collection's current size.
func (g *Gateway) TotalSupply(ctx context.Context) (uint64, error) {
	var resp struct {
		TotalSupply uint64 `json:"total_supply"`
	}

	if err := g.call(ctx, g.nftURL+"/v1/icrc7/total_supply", nil, &resp); err != nil {
		return 0, err
	}

	return resp.TotalSupply, nil
}

// =============================================================================
// chain.CoinLedger implementation.

// Transfer mints the specified amount of coin to the account. The ledger's
// transaction index is returned on success.
func (g *Gateway) Transfer(ctx context.Context, to db.Account, amount uint64, createdAt uint64) (uint64, error) {
	req := struct {
		To            db.Account `json:"to"`
		Amount        uint64     `json:"amount"`
		CreatedAtTime uint64     `json:"created_at_time"`
	}{
		To:            to,
		Amount:        amount,
		CreatedAtTime: createdAt,
	}

	var resp struct {
		Tx    *uint64 `json:"tx"`
		Error string  `json:"error"`
	}

	if err := g.call(ctx, g.coinURL+"/v1/icrc1/transfer", req, &resp); err != nil {
		return 0, err
	}

	// The ledger reports rejections in-band with a 200 status.
	if resp.Error != "" {
		return 0, fmt.Errorf("transfer rejected: %s", resp.Error)
	}
	if resp.Tx == nil {
		return 0, errors.New("transfer response missing tx index")
	}

	return *resp.Tx, nil
}

// =============================================================================

// call performs one JSON round trip. A nil request body issues a GET.
func (g *Gateway) call(ctx context.Context, url string, request any, response any) error {
	method := http.MethodGet
	var body io.Reader

	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			return err
		}
		method = http.MethodPost
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway call %s: status %d", url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(response)
}
