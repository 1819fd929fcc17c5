package state

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a merkle root is requested and there
// are no transactions in the mempool.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// QueryBlockByHash returns the block with the specified hash.
func (s *State) QueryBlockByHash(hash string) (database.Block, error) {
	return s.db.QueryBlockByHash(hash)
}

// QueryTransaction returns the confirmed transaction with the specified id
// and the block that contains it.
func (s *State) QueryTransaction(id string) (database.Tx, database.Block, error) {
	return s.db.QueryTransaction(id)
}

// QueryAddress returns the confirmed transactions and balance of
// the address.
func (s *State) QueryAddress(address string) database.AddressData {
	return s.db.QueryAddress(address)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryMerkleRoot calculates the merkle root of the transactions currently
// in the mempool, in mempool order.
func (s *State) QueryMerkleRoot() (string, error) {
	trans := s.mempool.Copy()
	if len(trans) == 0 {
		return "", ErrNoTransactions
	}

	return database.MerkleRoot(trans)
}

// QueryMerkleProof returns the inclusion proof of the confirmed transaction
// against the merkle root of its block.
func (s *State) QueryMerkleProof(id string) (database.Block, [][]byte, []int64, error) {
	tx, block, err := s.db.QueryTransaction(id)
	if err != nil {
		return database.Block{}, nil, nil, err
	}

	tree, err := block.Tree()
	if err != nil {
		return database.Block{}, nil, nil, err
	}

	proof, order, err := tree.Proof(tx)
	if err != nil {
		return database.Block{}, nil, nil, err
	}

	return block, proof, order, nil
}
