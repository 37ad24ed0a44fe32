// Package public maintains the group of handlers for public access to the
// chain query surface.
package public

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/business/web/errs"
	"github.com/memechain/minter/foundation/events"
	"github.com/memechain/minter/foundation/hash"
	"github.com/memechain/minter/foundation/web"
	"go.uber.org/zap"
)

// maxTxPageSize bounds the audit query so one request can't walk the whole
// transaction log.
const maxTxPageSize = 1000

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Service *chain.Service
	Sched   *chain.Scheduler
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide cycle events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Chain returns the chain bookkeeping value and scheduler state.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	store := h.Service.Store()
	ch := store.Chain()

	info := chainInfo{
		Height:            ch.Height,
		LastBlockID:       ch.LastBlockID.String(),
		AccumulatedReward: ch.AccumulatedReward,
		NextLogCursor:     ch.NextLogCursor,
		NextReward:        h.Service.Reward(ch.Height),
		SchedulerStatus:   schedulerStatus(h.Sched),
		TotalTransactions: store.TxCount(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// BlockByHash returns the block stored under the specified id.
func (h Handlers) BlockByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var id hash.Hash
	if err := id.UnmarshalText([]byte(web.Param(r, "hash"))); err != nil {
		return errs.NewTrusted(errors.New("invalid block hash"), http.StatusBadRequest)
	}

	blk, exists := h.Service.Store().BlockByID(id)
	if !exists {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(id.String(), blk), http.StatusOK)
}

// BlockByHeight returns the block produced at the specified height.
func (h Handlers) BlockByHeight(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := strconv.ParseUint(web.Param(r, "height"), 10, 32)
	if err != nil {
		return errs.NewTrusted(errors.New("invalid block height"), http.StatusBadRequest)
	}

	blk, exists := h.Service.Store().BlockByHeight(uint32(height))
	if !exists {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(blk.ID().String(), blk), http.StatusOK)
}

// TxList returns a page of transactions in insertion order plus the total
// count, for external auditing and UI consumption.
func (h Handlers) TxList(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	offset, err := strconv.Atoi(web.Param(r, "offset"))
	if err != nil || offset < 0 {
		return errs.NewTrusted(errors.New("invalid offset"), http.StatusBadRequest)
	}

	size, err := strconv.Atoi(web.Param(r, "size"))
	if err != nil || size <= 0 || size > maxTxPageSize {
		return errs.NewTrusted(errors.New("invalid page size"), http.StatusBadRequest)
	}

	recs, total := h.Service.Store().TxSlice(offset, size)

	resp := txList{
		Txs:   toTxEvents(recs),
		Total: total,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
