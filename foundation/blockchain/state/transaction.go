package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// UpsertMempool adds a transaction to the mempool and returns the index of
// the block the transaction is expected to be part of. A transaction whose
// id is already pending or confirmed is not added again and false
// is returned.
func (s *State) UpsertMempool(tx database.Tx) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blockIndex := s.db.LatestBlock().Index + 1

	if s.mempool.Contains(tx.ID) || s.db.ContainsTx(tx.ID) {
		s.evHandler("state: UpsertMempool: tx[%s]: already known", tx.ID)
		return blockIndex, false
	}

	s.mempool.Add(tx)
	s.evHandler("state: UpsertMempool: tx[%s]: added: blockIndex[%d]", tx, blockIndex)

	return blockIndex, true
}

// SubmitTransaction creates a new transaction, adds it to the local mempool
// and shares it with every known peer. The hosts of the peers that could not
// be reached are returned.
func (s *State) SubmitTransaction(ctx context.Context, amount float64, sender string, recipient string) (database.Tx, []string) {
	tx := database.NewTx(amount, sender, recipient)

	s.UpsertMempool(tx)
	failed := s.NetSendTxToPeers(ctx, tx)

	return tx, failed
}
