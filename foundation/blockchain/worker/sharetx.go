package worker

import "context"

// maxTxShareRequests bounds the queue of transactions waiting to be sent to
// peers. Once full, further share signals are dropped.
const maxTxShareRequests = 100

// =============================================================================

// shareTxOperations drains the share queue until shutdown.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return

		case tx := <-w.txSharing:
			if w.isShutdown() {
				continue
			}

			if failed := w.state.NetSendTxToPeers(context.Background(), tx); len(failed) > 0 {
				w.evHandler("worker: shareTxOperations: tx[%s]: WARNING: failed peers[%v]", tx.ID, failed)
				continue
			}
			w.evHandler("worker: shareTxOperations: tx[%s]: shared", tx.ID)
		}
	}
}
