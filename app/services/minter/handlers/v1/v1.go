// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/memechain/minter/app/services/minter/handlers/v1/private"
	"github.com/memechain/minter/app/services/minter/handlers/v1/public"
	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/foundation/events"
	"github.com/memechain/minter/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Service *chain.Service
	Sched   *chain.Scheduler
	Evts    *events.Events
}

const version = "v1"

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:     cfg.Log,
		Service: cfg.Service,
		Sched:   cfg.Sched,
		WS:      websocket.Upgrader{},
		Evts:    cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/block/hash/:hash", pbl.BlockByHash)
	app.Handle(http.MethodGet, version, "/block/height/:height", pbl.BlockByHeight)
	app.Handle(http.MethodGet, version, "/tx/list/:offset/:size", pbl.TxList)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:     cfg.Log,
		Service: cfg.Service,
		Sched:   cfg.Sched,
	}

	app.Handle(http.MethodPost, version, "/chain/cycle", prv.Cycle)
	app.Handle(http.MethodPost, version, "/payouts/replay", prv.Replay)
}
