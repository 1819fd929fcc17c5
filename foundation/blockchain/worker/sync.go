package worker

import (
	"context"
)

// Sync announces this node to the known peers and then brings the chain
// and mempool up to date using the longest chain in the network.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	ctx := context.Background()

	for _, peer := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(ctx, peer); err != nil {
			w.evHandler("worker: sync: addPeer: %s: ERROR: %s", peer.Host, err)
		}
	}

	chain, replaced := w.state.Consensus(ctx)
	w.evHandler("worker: sync: consensus: replaced[%v]: blocks[%d]", replaced, len(chain))
}
