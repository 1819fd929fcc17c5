// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/ledgergrp"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	lgh := ledgergrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", lgh.Events)
	app.Handle(http.MethodGet, version, "/genesis", lgh.Genesis)
	app.Handle(http.MethodGet, version, "/blockchain", lgh.Blockchain)
	app.Handle(http.MethodPost, version, "/transaction", lgh.SubmitTransaction)
	app.Handle(http.MethodPost, version, "/transaction/broadcast", lgh.BroadcastTransaction)
	app.Handle(http.MethodGet, version, "/mine", lgh.Mine)
	app.Handle(http.MethodPost, version, "/receive-new-block", lgh.ReceiveNewBlock)
	app.Handle(http.MethodGet, version, "/consensus", lgh.Consensus)
	app.Handle(http.MethodPost, version, "/register-node", lgh.RegisterNode)
	app.Handle(http.MethodPost, version, "/register-and-broadcast-node", lgh.RegisterAndBroadcastNode)
	app.Handle(http.MethodPost, version, "/register-nodes-bulk", lgh.RegisterNodesBulk)
	app.Handle(http.MethodGet, version, "/block/:hash", lgh.QueryBlock)
	app.Handle(http.MethodGet, version, "/transaction/:id", lgh.QueryTransaction)
	app.Handle(http.MethodGet, version, "/transaction/:id/proof", lgh.QueryMerkleProof)
	app.Handle(http.MethodGet, version, "/address/:address", lgh.QueryAddress)
	app.Handle(http.MethodPost, version, "/merkle-tree", lgh.MerkleTree)
}
