package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveNodeURL returns the url other nodes use to reach this node.
func (s *State) RetrieveNodeURL() string {
	return s.nodeURL
}

// RetrieveNodeAddress returns the address credited with mining rewards.
func (s *State) RetrieveNodeAddress() string {
	return s.nodeAddress
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.nodeURL)
}

// RetrieveSnapshot returns the full state of the node. The chain and the
// mempool are read together so they are consistent with each other.
func (s *State) RetrieveSnapshot() consensus.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return consensus.Snapshot{
		Chain:               s.db.Copy(),
		PendingTransactions: s.mempool.Copy(),
		CurrentNodeURL:      s.nodeURL,
		NetworkNodes:        s.knownPeers.Hosts(s.nodeURL),
	}
}
