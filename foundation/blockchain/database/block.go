package database

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is the previous block hash
// recorded by the genesis block.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// BlockData represents the block fields that are committed to by the
// block hash along with the previous block hash and the nonce.
type BlockData struct {
	MerkleRoot string `json:"merkle_root"`
	Index      uint64 `json:"index"`
}

// Block represents a group of transactions batched together.
type Block struct {
	Index         uint64 `json:"index"`               // Position of the block in the chain.
	TimeStamp     uint64 `json:"timestamp"`           // Time the block was mined.
	Transactions  []Tx   `json:"transactions"`        // Transactions committed by the merkle root.
	Nonce         uint64 `json:"nonce"`               // Value identified to solve the hash solution.
	Hash          string `json:"hash"`                // Hash of the block header.
	PrevBlockHash string `json:"previous_block_hash"` // Hash of the previous block in the chain.
	MerkleRoot    string `json:"merkle_root"`         // Merkle root of the hashes of the transactions.
}

// NewGenesisBlock constructs the first block of the chain. Every node using
// the same genesis information constructs the identical block.
func NewGenesisBlock(gen genesis.Genesis) Block {
	data := BlockData{
		MerkleRoot: merkle.EmptyRootHex,
		Index:      0,
	}

	return Block{
		Index:         0,
		TimeStamp:     uint64(gen.Date.UTC().Unix()),
		Transactions:  []Tx{},
		Nonce:         gen.Nonce,
		Hash:          HashBlock(ZeroHash, data, gen.Nonce),
		PrevBlockHash: ZeroHash,
		MerkleRoot:    merkle.EmptyRootHex,
	}
}

// NewBlock constructs a block from mining results.
func NewBlock(prevBlockHash string, data BlockData, nonce uint64, hash string, trans []Tx) Block {
	return Block{
		Index:         data.Index,
		TimeStamp:     uint64(time.Now().UTC().Unix()),
		Transactions:  trans,
		Nonce:         nonce,
		Hash:          hash,
		PrevBlockHash: prevBlockHash,
		MerkleRoot:    data.MerkleRoot,
	}
}

// Data returns the block fields committed to by the hash.
func (b Block) Data() BlockData {
	return BlockData{
		MerkleRoot: b.MerkleRoot,
		Index:      b.Index,
	}
}

// CalculateHash recomputes the hash of the block from its header fields.
// The stored Hash field is not used.
func (b Block) CalculateHash() string {
	return HashBlock(b.PrevBlockHash, b.Data(), b.Nonce)
}

// Tree constructs the merkle tree for the block's transactions. The tree can
// be used to produce inclusion proofs for a transaction.
func (b Block) Tree() (*merkle.Tree[Tx], error) {
	return merkle.NewTree(b.Transactions)
}

// =============================================================================

// HashBlock returns the hash of the previous block hash, the block data
// and the nonce.
func HashBlock(prevBlockHash string, data BlockData, nonce uint64) string {
	header := struct {
		PrevBlockHash string    `json:"previous_block_hash"`
		Data          BlockData `json:"data"`
		Nonce         uint64    `json:"nonce"`
	}{
		PrevBlockHash: prevBlockHash,
		Data:          data,
		Nonce:         nonce,
	}

	return hash(header)
}

// MerkleRoot calculates the merkle root hex for the ordered set of
// transactions.
func MerkleRoot(trans []Tx) (string, error) {
	leaves := make([][]byte, len(trans))
	for i, tx := range trans {
		h, err := tx.Hash()
		if err != nil {
			return "", err
		}
		leaves[i] = h
	}

	return merkle.RootHex(leaves), nil
}

// hash returns a unique string for the value.
func hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}
