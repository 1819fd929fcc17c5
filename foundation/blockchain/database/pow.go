package database

import (
	"context"
	"strings"
)

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock  Block
	Trans      []Tx
	Difficulty uint16
	EvHandler  func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzel. The merkle root is calculated over
// the transactions in the order provided.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	merkleRoot, err := MerkleRoot(args.Trans)
	if err != nil {
		return Block{}, err
	}

	data := BlockData{
		MerkleRoot: merkleRoot,
		Index:      args.PrevBlock.Index + 1,
	}

	for _, tx := range args.Trans {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	nonce, hash, err := SearchNonce(ctx, args.PrevBlock.Hash, data, args.Difficulty, ev)
	if err != nil {
		return Block{}, err
	}

	return NewBlock(args.PrevBlock.Hash, data, nonce, hash, args.Trans), nil
}

// SearchNonce scans nonce values from 0 upward until the hash of the previous
// block hash, block data and nonce satisfies the difficulty. The first nonce
// found is returned with its hash. The search stops if the context is
// cancelled.
func SearchNonce(ctx context.Context, prevBlockHash string, data BlockData, difficulty uint16, ev func(v string, args ...any)) (uint64, string, error) {
	ev("database: SearchNonce: MINING: started: blk[%d]", data.Index)
	defer ev("database: SearchNonce: MINING: completed: blk[%d]", data.Index)

	var nonce uint64
	for {
		if nonce > 0 && nonce%1_000_000 == 0 {
			ev("database: SearchNonce: MINING: attempts[%d]", nonce)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: SearchNonce: MINING: CANCELLED")
			return 0, "", ctx.Err()
		}

		hash := HashBlock(prevBlockHash, data, nonce)
		if IsHashSolved(difficulty, hash) {
			ev("database: SearchNonce: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", prevBlockHash, hash, nonce+1)
			return nonce, hash, nil
		}

		nonce++
	}
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The hex digest, without its 0x prefix, needs to start with a difficulty
// number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	hash = strings.TrimPrefix(hash, "0x")
	if len(hash) != 64 || int(difficulty) > len(hash) {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", int(difficulty))
}
