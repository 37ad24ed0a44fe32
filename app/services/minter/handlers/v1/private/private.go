// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/business/sys/validate"
	"github.com/memechain/minter/business/web/errs"
	"github.com/memechain/minter/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Service *chain.Service
	Sched   *chain.Scheduler
}

// Cycle forces one settlement cycle to run immediately. This is the
// operator's recovery path after a halt.
func (h Handlers) Cycle(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("forcing settlement cycle", "traceid", v.TraceID)

	if err := h.Sched.Trigger(ctx); err != nil {
		switch {
		case errors.Is(err, chain.ErrCycleRunning):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, chain.ErrShutdown):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("forcing cycle: %w", err)
	}

	resp := struct {
		Status string `json:"status"`
		Height uint32 `json:"height"`
	}{
		Status: "cycle completed",
		Height: h.Service.Store().Chain().Height,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// replayRequest asks for a range of the persisted transaction log to be
// re-sent to the coin ledger.
type replayRequest struct {
	Offset int `json:"offset" validate:"gte=0"`
	Size   int `json:"size" validate:"required,gt=0,lte=1000"`
}

// Validate runs after decoding the request.
func (r replayRequest) Validate() error {
	return validate.Check(r)
}

// Replay re-sends the transfers for a persisted transaction range. Failed
// payouts never corrupt chain bookkeeping, so replaying committed
// transactions is always safe.
func (h Handlers) Replay(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req replayRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("replaying payouts", "traceid", v.TraceID, "offset", req.Offset, "size", req.Size)

	replayed := h.Service.ReplayPayouts(ctx, req.Offset, req.Size)

	resp := struct {
		Status   string `json:"status"`
		Replayed int    `json:"replayed"`
	}{
		Status:   "payouts replayed",
		Replayed: replayed,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
