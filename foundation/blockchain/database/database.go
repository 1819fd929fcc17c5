// Package database handles all the lower level support for maintaining the
// blockchain in storage and answering queries against it.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(index uint64) (Block, error)
	ForEach() Iterator
	Replace(blocks []Block) error
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of blocks held by the storage. The database
// performs no validation on writes. Callers must validate blocks first.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	latestBlock Block
	length      int

	storage Storage
}

// New constructs a new database over the specified storage. An empty storage
// is initialized with the genesis block. Blocks already in storage must form
// a valid chain for this genesis.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	db := Database{
		genesis: gen,
		storage: storage,
	}

	var blocks []Block
	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		evHandler("database: New: writing genesis block")

		genesisBlock := NewGenesisBlock(gen)
		if err := storage.Write(genesisBlock); err != nil {
			return nil, fmt.Errorf("writing genesis block: %w", err)
		}

		db.latestBlock = genesisBlock
		db.length = 1

		return &db, nil
	}

	evHandler("database: New: validating stored blocks[%d]", len(blocks))

	if err := ValidateChain(blocks, gen); err != nil {
		return nil, err
	}

	db.latestBlock = blocks[len(blocks)-1]
	db.length = len(blocks)

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.storage.Close()
}

// Genesis returns the genesis information for this chain.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Length returns the number of blocks in the chain, genesis included.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// Write appends the block to the chain.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Write(block); err != nil {
		return err
	}

	db.latestBlock = block
	db.length++

	return nil
}

// Replace swaps the entire chain for the specified chain. The chain is
// expected to be validated by the caller.
func (db *Database) Replace(chain []Block) error {
	if len(chain) == 0 {
		return errors.New("replacement chain is empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Replace(chain); err != nil {
		return err
	}

	db.latestBlock = chain[len(chain)-1]
	db.length = len(chain)

	return nil
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.GetBlock(index)
}

// Copy returns the chain of blocks starting with the genesis block.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.readAll()
}

// readAll walks the storage collecting every block. The caller must hold
// a lock.
func (db *Database) readAll() []Block {
	blocks := make([]Block, 0, db.length)

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			break
		}
		blocks = append(blocks, block)
	}

	return blocks
}
