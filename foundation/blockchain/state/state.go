// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, startup sync and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	Mine(ctx context.Context) (database.Block, error)
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
}

// =============================================================================

// defaultPeerTimeout bounds every call made to a peer when no timeout
// is configured.
const defaultPeerTimeout = 5 * time.Second

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeAddress string
	NodeURL     string
	Genesis     genesis.Genesis
	Storage     database.Storage
	KnownPeers  *peer.PeerSet
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the blockchain database, the mempool and the set of
// known peers. All changes to the chain and the mempool are serialized
// by the state mutex.
type State struct {
	mu sync.Mutex

	nodeAddress string
	nodeURL     string
	peerTimeout time.Duration
	evHandler   EventHandler

	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database
	client     netClient

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the blockchain. The genesis block is written
	// if the storage is empty.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// The local node is never part of its own peer set.
	knownPeers.Remove(peer.New(cfg.NodeURL))

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeAddress: cfg.NodeAddress,
		nodeURL:     peer.New(cfg.NodeURL).Host,
		peerTimeout: peerTimeout,
		evHandler:   ev,

		genesis:    cfg.Genesis,
		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         db,
		client:     newNetClient(),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
