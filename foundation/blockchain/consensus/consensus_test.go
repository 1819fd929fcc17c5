package consensus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

func testGenesis() genesis.Genesis {
	gen := genesis.Default()
	gen.Difficulty = 1
	return gen
}

// buildChain mines a valid chain of the specified length, genesis included.
// Each chain gets its own recipient so chains of the same length differ.
func buildChain(t *testing.T, gen genesis.Genesis, length int, recipient string) []database.Block {
	chain := []database.Block{database.NewGenesisBlock(gen)}

	for len(chain) < length {
		block, err := database.POW(context.Background(), database.POWArgs{
			PrevBlock:  chain[len(chain)-1],
			Trans:      []database.Tx{database.NewCoinbaseTx(gen.MiningReward, recipient)},
			Difficulty: gen.Difficulty,
		})
		if err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
		chain = append(chain, block)
	}

	return chain
}

func Test_Resolve(t *testing.T) {
	gen := testGenesis()

	a := consensus.Snapshot{CurrentNodeURL: "A", Chain: buildChain(t, gen, 5, "A"), PendingTransactions: []database.Tx{{ID: "pa"}}}
	b := consensus.Snapshot{CurrentNodeURL: "B", Chain: buildChain(t, gen, 4, "B")}
	c := consensus.Snapshot{CurrentNodeURL: "C", Chain: buildChain(t, gen, 5, "C")}

	type table struct {
		name      string
		local     int
		snapshots []consensus.Snapshot
		replaced  bool
		exp       string
	}

	tt := []table{
		{name: "longest", local: 3, snapshots: []consensus.Snapshot{a, b}, replaced: true, exp: "A"},
		{name: "order", local: 3, snapshots: []consensus.Snapshot{b, a}, replaced: true, exp: "A"},
		{name: "tie", local: 3, snapshots: []consensus.Snapshot{a, c}, replaced: true, exp: "A"},
		{name: "tie-reversed", local: 3, snapshots: []consensus.Snapshot{c, a}, replaced: true, exp: "C"},
		{name: "local-longest", local: 6, snapshots: []consensus.Snapshot{a, b}, replaced: false},
		{name: "local-equal", local: 5, snapshots: []consensus.Snapshot{a}, replaced: false},
		{name: "no-peers", local: 1, replaced: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			snapshot, replaced, err := consensus.Resolve(tst.local, tst.snapshots, gen)
			if err != nil {
				t.Fatalf("Should be able to resolve: %s", err)
			}

			if replaced != tst.replaced {
				t.Logf("got: %v", replaced)
				t.Logf("exp: %v", tst.replaced)
				t.Fatalf("Should make the right replacement decision.")
			}

			if replaced && snapshot.CurrentNodeURL != tst.exp {
				t.Logf("got: %s", snapshot.CurrentNodeURL)
				t.Logf("exp: %s", tst.exp)
				t.Fatalf("Should select the right snapshot.")
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ResolveInvalid(t *testing.T) {
	gen := testGenesis()

	bad := buildChain(t, gen, 5, "A")
	bad[3].PrevBlockHash = database.ZeroHash

	forged := buildChain(t, gen, 6, "B")
	forged[0].Nonce++

	good := buildChain(t, gen, 4, "C")

	type table struct {
		name      string
		snapshots []consensus.Snapshot
	}

	tt := []table{
		{name: "broken-link", snapshots: []consensus.Snapshot{{Chain: bad}, {Chain: good}}},
		{name: "wrong-genesis", snapshots: []consensus.Snapshot{{Chain: forged}}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			_, replaced, err := consensus.Resolve(3, tst.snapshots, gen)
			if !errors.Is(err, database.ErrInvalidChain) {
				t.Logf("got: %v", err)
				t.Logf("exp: %v", database.ErrInvalidChain)
				t.Fatalf("Should reject the longest chain.")
			}

			if replaced {
				t.Fatalf("Should keep the local chain.")
			}
		}

		t.Run(tst.name, f)
	}
}
