// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of pending transactions waiting to be
// included in the next mined block. Transactions are kept in arrival order
// and keyed by id.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
	ids  map[string]struct{}
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		ids: make(map[string]struct{}),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends the transaction to the end of the pool. Adding a transaction
// whose id is already pending is a no-op and returns false.
func (mp *Mempool) Add(tx database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.ids[tx.ID]; exists {
		return false
	}

	mp.pool = append(mp.pool, tx)
	mp.ids[tx.ID] = struct{}{}

	return true
}

// Contains reports if a transaction with the id is pending.
func (mp *Mempool) Contains(id string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.ids[id]
	return exists
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.ids[id]; !exists {
		return
	}

	delete(mp.ids, id)
	for i, tx := range mp.pool {
		if tx.ID == id {
			mp.pool = append(mp.pool[:i:i], mp.pool[i+1:]...)
			break
		}
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
	mp.ids = make(map[string]struct{})
}

// Replace swaps the content of the pool for the specified transactions.
// Duplicate ids keep their first occurrence.
func (mp *Mempool) Replace(trans []database.Tx) {
	pool := make([]database.Tx, 0, len(trans))
	ids := make(map[string]struct{}, len(trans))

	for _, tx := range trans {
		if _, exists := ids[tx.ID]; exists {
			continue
		}
		pool = append(pool, tx)
		ids[tx.ID] = struct{}{}
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = pool
	mp.ids = ids
}

// Copy returns a copy of the pending transactions in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}
