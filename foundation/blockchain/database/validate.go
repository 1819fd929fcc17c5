package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// ErrInvalidChain is returned when a block or a chain fails structural
// validation. No state is changed when this error is returned.
var ErrInvalidChain = errors.New("invalid chain")

// =============================================================================

// ValidateNextBlock checks if the block can be appended after the specified
// latest block. Only the linkage is checked: the previous block hash must
// match the latest block's hash and the index must be the next index.
func (b Block) ValidateNextBlock(latestBlock Block) error {
	if b.PrevBlockHash != latestBlock.Hash {
		return fmt.Errorf("%w: previous block hash doesn't match our latest block, got %s, exp %s", ErrInvalidChain, b.PrevBlockHash, latestBlock.Hash)
	}

	if b.Index != latestBlock.Index+1 {
		return fmt.Errorf("%w: this block is not the next index, got %d, exp %d", ErrInvalidChain, b.Index, latestBlock.Index+1)
	}

	return nil
}

// ValidateChain walks the entire chain checking that the first block is the
// genesis block and every block after it is correctly linked, hashed, solved
// and committed to its transactions. Any failure invalidates the chain.
func ValidateChain(chain []Block, gen genesis.Genesis) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrInvalidChain)
	}

	if err := validateGenesisBlock(chain[0], gen); err != nil {
		return err
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].validateBlock(chain[i-1], gen.Difficulty); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return nil
}

// validateGenesisBlock checks the block matches the genesis definition.
func validateGenesisBlock(b Block, gen genesis.Genesis) error {
	exp := NewGenesisBlock(gen)

	switch {
	case b.Index != exp.Index:
		return fmt.Errorf("%w: genesis index, got %d, exp %d", ErrInvalidChain, b.Index, exp.Index)
	case b.Hash != exp.Hash:
		return fmt.Errorf("%w: genesis hash, got %s, exp %s", ErrInvalidChain, b.Hash, exp.Hash)
	case b.PrevBlockHash != exp.PrevBlockHash:
		return fmt.Errorf("%w: genesis previous hash, got %s, exp %s", ErrInvalidChain, b.PrevBlockHash, exp.PrevBlockHash)
	case b.Nonce != exp.Nonce:
		return fmt.Errorf("%w: genesis nonce, got %d, exp %d", ErrInvalidChain, b.Nonce, exp.Nonce)
	case b.MerkleRoot != exp.MerkleRoot:
		return fmt.Errorf("%w: genesis merkle root, got %s, exp %s", ErrInvalidChain, b.MerkleRoot, exp.MerkleRoot)
	case b.TimeStamp != exp.TimeStamp:
		return fmt.Errorf("%w: genesis timestamp, got %d, exp %d", ErrInvalidChain, b.TimeStamp, exp.TimeStamp)
	case len(b.Transactions) != 0:
		return fmt.Errorf("%w: genesis has transactions[%d]", ErrInvalidChain, len(b.Transactions))
	}

	return nil
}

// validateBlock performs the full structural validation of a block against
// the block that precedes it.
func (b Block) validateBlock(previousBlock Block, difficulty uint16) error {
	if err := b.ValidateNextBlock(previousBlock); err != nil {
		return err
	}

	hash := b.CalculateHash()
	if hash != b.Hash {
		return fmt.Errorf("%w: block hash doesn't match its header, got %s, exp %s", ErrInvalidChain, b.Hash, hash)
	}

	if !IsHashSolved(difficulty, hash) {
		return fmt.Errorf("%w: %s invalid block hash for difficulty %d", ErrInvalidChain, hash, difficulty)
	}

	merkleRoot, err := MerkleRoot(b.Transactions)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidChain, err)
	}

	if merkleRoot != b.MerkleRoot {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrInvalidChain, b.MerkleRoot, merkleRoot)
	}

	return nil
}
