package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrStaleBlock is returned when the chain moved while a block was being
// mined, so the block no longer extends the latest block.
var ErrStaleBlock = errors.New("mined block is stale")

// =============================================================================

// Mine asks the worker to mine the next block. Without a registered worker
// the block is mined and proposed to the peers on the calling goroutine.
func (s *State) Mine(ctx context.Context) (database.Block, error) {
	if s.Worker != nil {
		return s.Worker.Mine(ctx)
	}

	block, err := s.MineNewBlock(ctx)
	if err != nil {
		return database.Block{}, err
	}

	s.NetSendBlockToPeers(ctx, block)
	for _, tx := range block.Transactions {
		if tx.IsCoinbase() && tx.Recipient == s.nodeAddress {
			s.NetSendTxToPeers(ctx, tx)
		}
	}

	return block, nil
}

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The mining reward is added to the
// mempool before the merkle root is calculated so the block commits to it.
// The search for the nonce happens without holding the state lock.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: prepare transactions")

	coinbase := database.NewCoinbaseTx(s.genesis.MiningReward, s.nodeAddress)

	s.mu.Lock()
	prevBlock := s.db.LatestBlock()
	s.mempool.Add(coinbase)
	trans := s.mempool.Copy()
	s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: trans[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock:  prevBlock,
		Trans:      trans,
		Difficulty: s.genesis.Difficulty,
		EvHandler:  s.evHandler,
	})
	if err != nil {
		s.dropTx(coinbase.ID)
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		s.dropTx(coinbase.ID)
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: validate and update database")

	if err := s.validateUpdateDatabase(block); err != nil {
		s.dropTx(coinbase.ID)
		if errors.Is(err, database.ErrInvalidChain) {
			return database.Block{}, fmt.Errorf("%w: %s", ErrStaleBlock, err)
		}
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain. A rejected block
// leaves the chain and the mempool untouched.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PrevBlockHash, block.Hash, len(block.Transactions))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash)

	// Validate the block and then update the blockchain database.
	if err := s.validateUpdateDatabase(block); err != nil {
		return err
	}

	// If a mining operation is being executed it needs to stop immediately
	// since it is mining on top of an old block. The mining goroutine will
	// not return until done is called.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer func() {
			s.evHandler("state: ProcessProposedBlock: signal mining to terminate")
			done()
		}()
	}

	return nil
}

// =============================================================================

// validateUpdateDatabase takes the block and validates it against the
// latest block. If the block passes, the block is appended to the chain
// and the mempool is cleared.
func (s *State) validateUpdateDatabase(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: validateUpdateDatabase: validate block")

	if err := block.ValidateNextBlock(s.db.LatestBlock()); err != nil {
		return err
	}

	s.evHandler("state: validateUpdateDatabase: write block")

	if err := s.db.Write(block); err != nil {
		return err
	}

	// Transactions that arrived after mining started are dropped with the
	// rest of the pool.
	s.evHandler("state: validateUpdateDatabase: clear mempool: trans[%d]", s.mempool.Count())
	s.mempool.Truncate()

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// dropTx removes the transaction from the mempool.
func (s *State) dropTx(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Delete(id)
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash, string(blockJSON))
}
