package database

import (
	"errors"
)

// ErrNotFound is returned when a block or transaction does not exist
// in the chain.
var ErrNotFound = errors.New("not found")

// AddressData represents the confirmed activity of an address.
type AddressData struct {
	Transactions []Tx    `json:"transactions"`
	Balance      float64 `json:"balance"`
}

// =============================================================================

// QueryBlockByHash returns the block with the specified hash.
func (db *Database) QueryBlockByHash(hash string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.readAll() {
		if block.Hash == hash {
			return block, nil
		}
	}

	return Block{}, ErrNotFound
}

// QueryTransaction returns the confirmed transaction with the specified id
// and the block that contains it. Transactions still pending in the mempool
// are not part of the chain and are never returned.
func (db *Database) QueryTransaction(id string) (Tx, Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.readAll() {
		for _, tx := range block.Transactions {
			if tx.ID == id {
				return tx, block, nil
			}
		}
	}

	return Tx{}, Block{}, ErrNotFound
}

// QueryAddress returns every confirmed transaction where the address is the
// sender or the recipient and the resulting balance. The chain is scanned on
// every call.
func (db *Database) QueryAddress(address string) AddressData {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ad := AddressData{
		Transactions: []Tx{},
	}

	for _, block := range db.readAll() {
		for _, tx := range block.Transactions {
			if tx.Sender != address && tx.Recipient != address {
				continue
			}

			ad.Transactions = append(ad.Transactions, tx)

			if tx.Recipient == address {
				ad.Balance += tx.Amount
			}
			if tx.Sender == address {
				ad.Balance -= tx.Amount
			}
		}
	}

	return ad
}

// ContainsTx reports if a transaction with the specified id is confirmed.
func (db *Database) ContainsTx(id string) bool {
	_, _, err := db.QueryTransaction(id)
	return err == nil
}
