package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

func Test_WriteAndIterate(t *testing.T) {
	m := memory.New()

	gb := database.NewGenesisBlock(genesis.Default())
	if err := m.Write(gb); err != nil {
		t.Fatalf("Should be able to write the genesis block: %s", err)
	}

	next := database.Block{Index: 1, PrevBlockHash: gb.Hash}
	if err := m.Write(next); err != nil {
		t.Fatalf("Should be able to write the next block: %s", err)
	}

	skip := database.Block{Index: 5}
	if err := m.Write(skip); !errors.Is(err, memory.ErrOutOfOrder) {
		t.Logf("got: %v", err)
		t.Logf("exp: %v", memory.ErrOutOfOrder)
		t.Fatalf("Should reject a block out of order.")
	}

	var indexes []uint64
	iter := m.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate: %s", err)
		}
		indexes = append(indexes, block.Index)
	}

	if len(indexes) != 2 || indexes[0] != 0 || indexes[1] != 1 {
		t.Logf("got: %v", indexes)
		t.Logf("exp: %v", []uint64{0, 1})
		t.Fatalf("Should iterate the blocks in order.")
	}

	if _, err := m.GetBlock(2); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Should not find a block past the end of the chain.")
	}
}

func Test_Replace(t *testing.T) {
	m := memory.New()

	gb := database.NewGenesisBlock(genesis.Default())
	if err := m.Write(gb); err != nil {
		t.Fatalf("Should be able to write the genesis block: %s", err)
	}

	chain := []database.Block{gb, {Index: 1}, {Index: 2}}
	if err := m.Replace(chain); err != nil {
		t.Fatalf("Should be able to replace the chain: %s", err)
	}

	chain[2].Hash = "changed"

	block, err := m.GetBlock(2)
	if err != nil {
		t.Fatalf("Should be able to get the last block: %s", err)
	}

	if block.Hash == "changed" {
		t.Fatalf("Should hold its own copy of the replaced chain.")
	}

	if err := m.Replace([]database.Block{gb, {Index: 2}}); !errors.Is(err, memory.ErrOutOfOrder) {
		t.Fatalf("Should reject a replacement chain with a gap.")
	}
}
