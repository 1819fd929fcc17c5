package ledgergrp

import (
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// NewTx is the transaction submitted to the mempool of this node. Peers
// sharing a transaction provide its id.
type NewTx struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Sender    string  `json:"sender" validate:"required"`
	Recipient string  `json:"recipient" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (m NewTx) Validate() error {
	return validate.Check(m)
}

// toDB converts the model into a transaction, generating an id if
// none was provided.
func (m NewTx) toDB() database.Tx {
	id := m.ID
	if id == "" {
		id = database.NewTxID()
	}

	return database.Tx{
		ID:        id,
		Amount:    m.Amount,
		Sender:    m.Sender,
		Recipient: m.Recipient,
	}
}

// BroadcastTx is a new transaction to be shared with the whole network.
type BroadcastTx struct {
	Amount    float64 `json:"amount" validate:"gte=0"`
	Sender    string  `json:"sender" validate:"required"`
	Recipient string  `json:"recipient" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (m BroadcastTx) Validate() error {
	return validate.Check(m)
}

// NewBlock is a block proposed by a peer.
type NewBlock struct {
	NewBlock database.Block `json:"newBlock"`
}

// NewNode identifies a node joining the network.
type NewNode struct {
	NewNodeURL string `json:"newNodeUrl" validate:"required,url"`
}

// Validate checks the data in the model is considered clean.
func (m NewNode) Validate() error {
	return validate.Check(m)
}

// BulkNodes is the full set of nodes in the network.
type BulkNodes struct {
	AllNetworkNodes []string `json:"allNetworkNodes" validate:"dive,url"`
}

// Validate checks the data in the model is considered clean.
func (m BulkNodes) Validate() error {
	return validate.Check(m)
}

// =============================================================================

type note struct {
	Note string `json:"note"`
}

type txAdded struct {
	Note       string `json:"note"`
	BlockIndex uint64 `json:"block_index"`
}

type txBroadcast struct {
	Note        string      `json:"note"`
	Transaction database.Tx `json:"transaction"`
	FailedPeers []string    `json:"failed_peers"`
}

type mined struct {
	Note  string         `json:"note"`
	Block database.Block `json:"block"`
}

type blockReceived struct {
	Note     string         `json:"note"`
	Accepted bool           `json:"accepted"`
	NewBlock database.Block `json:"newBlock"`
}

type consensusResult struct {
	Note     string           `json:"note"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
}

type nodeRegistered struct {
	Note        string   `json:"note"`
	FailedPeers []string `json:"failed_peers,omitempty"`
}

type blockResult struct {
	Block *database.Block `json:"block"`
}

type txResult struct {
	Transaction *database.Tx    `json:"transaction"`
	Block       *database.Block `json:"block"`
}

type addressData struct {
	Name         string        `json:"name"`
	Transactions []database.Tx `json:"transactions"`
	Balance      float64       `json:"balance"`
}

type addressResult struct {
	AddressData addressData `json:"addressData"`
}

type merkleRoot struct {
	MerkleRoot string `json:"merkle_root"`
}

type merkleProof struct {
	TransactionID string   `json:"transaction_id"`
	BlockHash     string   `json:"block_hash"`
	MerkleRoot    string   `json:"merkle_root"`
	Proof         []string `json:"proof"`
	Order         []int64  `json:"order"`
}
