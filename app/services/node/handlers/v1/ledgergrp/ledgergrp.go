// Package ledgergrp maintains the group of handlers for node access.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Blockchain returns the full state of the node.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveSnapshot(), http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// SubmitTransaction adds a transaction to the mempool of this node.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt NewTx
	if err := decode(r, &nt); err != nil {
		return err
	}

	tx := nt.toDB()
	blockIndex, _ := h.State.UpsertMempool(tx)

	resp := txAdded{
		Note:       fmt.Sprintf("Transaction will be added in block %d.", blockIndex),
		BlockIndex: blockIndex,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BroadcastTransaction creates a new transaction, adds it to the mempool and
// shares it with every known peer.
func (h Handlers) BroadcastTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var bt BroadcastTx
	if err := decode(r, &bt); err != nil {
		return err
	}

	h.Log.Infow("broadcast tran", "traceid", v.TraceID, "sender", bt.Sender, "recipient", bt.Recipient, "amount", bt.Amount)

	tx, failed := h.State.SubmitTransaction(ctx, bt.Amount, bt.Sender, bt.Recipient)

	resp := txBroadcast{
		Note:        "Transaction created and broadcast successfully.",
		Transaction: tx,
		FailedPeers: failed,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine mines the next block with the transactions in the mempool and
// proposes it to the network.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.Mine(ctx)
	if err != nil {
		if errors.Is(err, state.ErrStaleBlock) {
			return v1.NewRequestError(err, http.StatusConflict)
		}
		return fmt.Errorf("mine: %w", err)
	}

	resp := mined{
		Note:  "New block mined & broadcast successfully",
		Block: block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ReceiveNewBlock takes a block mined by a peer and appends it to the chain
// if it extends the latest block.
func (h Handlers) ReceiveNewBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb NewBlock
	if err := decode(r, &nb); err != nil {
		return err
	}

	resp := blockReceived{
		Note:     "New block received and accepted.",
		Accepted: true,
		NewBlock: nb.NewBlock,
	}

	if err := h.State.ProcessProposedBlock(nb.NewBlock); err != nil {
		if !errors.Is(err, database.ErrInvalidChain) {
			return err
		}

		resp.Note = "New block rejected."
		resp.Accepted = false
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Consensus replaces the chain with the longest valid chain in the network.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain, replaced := h.State.Consensus(ctx)

	resp := consensusResult{
		Note:     "Current chain has not been replaced.",
		Replaced: replaced,
		Chain:    chain,
	}
	if replaced {
		resp.Note = "This chain has been replaced."
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode adds a node to the set of known peers.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nn NewNode
	if err := decode(r, &nn); err != nil {
		return err
	}

	h.State.AddKnownPeer(peer.New(nn.NewNodeURL))

	return web.Respond(ctx, w, note{Note: "New node registered successfully."}, http.StatusOK)
}

// RegisterAndBroadcastNode adds a node to the set of known peers and shares
// it with the rest of the network.
func (h Handlers) RegisterAndBroadcastNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nn NewNode
	if err := decode(r, &nn); err != nil {
		return err
	}

	failed := h.State.RegisterAndBroadcastPeer(ctx, peer.New(nn.NewNodeURL))

	resp := nodeRegistered{
		Note:        "New node registered with network successfully.",
		FailedPeers: failed,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNodesBulk adds every node in the network to the set of
// known peers.
func (h Handlers) RegisterNodesBulk(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var bn BulkNodes
	if err := decode(r, &bn); err != nil {
		return err
	}

	h.State.AddKnownPeers(bn.AllNetworkNodes)

	return web.Respond(ctx, w, note{Note: "Bulk registration successful."}, http.StatusOK)
}

// QueryBlock returns the block with the specified hash.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var resp blockResult

	block, err := h.State.QueryBlockByHash(web.Param(r, "hash"))
	switch {
	case err == nil:
		resp.Block = &block
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryTransaction returns the confirmed transaction with the specified id
// and the block holding it.
func (h Handlers) QueryTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var resp txResult

	tx, block, err := h.State.QueryTransaction(web.Param(r, "id"))
	switch {
	case err == nil:
		resp.Transaction = &tx
		resp.Block = &block
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryMerkleProof returns the inclusion proof of a confirmed transaction.
func (h Handlers) QueryMerkleProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	block, proof, order, err := h.State.QueryMerkleProof(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		return err
	}

	hexProof := make([]string, len(proof))
	for i, p := range proof {
		hexProof[i] = hexutil.Encode(p)
	}

	resp := merkleProof{
		TransactionID: id,
		BlockHash:     block.Hash,
		MerkleRoot:    block.MerkleRoot,
		Proof:         hexProof,
		Order:         order,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryAddress returns the confirmed transactions and the balance of
// an address.
func (h Handlers) QueryAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")
	ad := h.State.QueryAddress(address)

	name := address
	if h.NS != nil {
		name = h.NS.Lookup(address)
	}

	resp := addressResult{
		AddressData: addressData{
			Name:         name,
			Transactions: ad.Transactions,
			Balance:      ad.Balance,
		},
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MerkleTree returns the merkle root of the transactions in the mempool.
func (h Handlers) MerkleTree(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	root, err := h.State.QueryMerkleRoot()
	if err != nil {
		if errors.Is(err, state.ErrNoTransactions) {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		return err
	}

	return web.Respond(ctx, w, merkleRoot{MerkleRoot: root}, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
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
				h.Log.Infow("events", "traceid", v.TraceID, "status", "client gone", "ERROR", err)
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

// decode reads the request body into the model. Validation failures keep
// their field errors and any other failure is a bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return nil
}
