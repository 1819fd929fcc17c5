package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Consensus requests the state of every known peer and replaces the local
// chain and mempool with those of the peer holding the longest valid chain.
// The chain in use after the call is returned with the replacement decision.
func (s *State) Consensus(ctx context.Context) ([]database.Block, bool) {
	s.evHandler("state: Consensus: started")
	defer s.evHandler("state: Consensus: completed")

	snapshots := s.NetRequestPeerSnapshots(ctx)

	snapshot, replace, err := consensus.Resolve(s.db.Length(), snapshots, s.genesis)
	if err != nil {
		s.evHandler("state: Consensus: WARNING: longest chain rejected: %s", err)
		return s.db.Copy(), false
	}

	if !replace {
		s.evHandler("state: Consensus: local chain kept")
		return s.db.Copy(), false
	}

	if !s.replaceChain(snapshot) {
		s.evHandler("state: Consensus: local chain grew, replacement skipped")
		return s.db.Copy(), false
	}

	// Mining on top of the replaced chain must stop.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		done()
	}

	return snapshot.Chain, true
}

// replaceChain swaps the chain and the mempool for those of the snapshot.
// The chain is only replaced if it is still longer than the local chain.
func (s *State) replaceChain(snapshot consensus.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(snapshot.Chain) <= s.db.Length() {
		return false
	}

	s.evHandler("state: replaceChain: replacing chain: from[%s]: blocks[%d]", snapshot.CurrentNodeURL, len(snapshot.Chain))

	if err := s.db.Replace(snapshot.Chain); err != nil {
		s.evHandler("state: replaceChain: ERROR: %s", err)
		return false
	}

	s.mempool.Replace(snapshot.PendingTransactions)

	return true
}
