package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

const nodeAddress = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func testGenesis() genesis.Genesis {
	gen := genesis.Default()
	gen.Difficulty = 2
	return gen
}

func newState(t *testing.T, nodeURL string, hosts ...string) *state.State {
	peerSet := peer.NewPeerSet()
	for _, host := range hosts {
		peerSet.Add(peer.New(host))
	}

	st, err := state.New(state.Config{
		NodeAddress: nodeAddress,
		NodeURL:     nodeURL,
		Genesis:     testGenesis(),
		Storage:     memory.New(),
		KnownPeers:  peerSet,
		PeerTimeout: time.Second,
	})
	ifErrFailNow(t, err)

	return st
}

// mineBlocks grows the chain of the state to the specified length,
// genesis included.
func mineBlocks(t *testing.T, st *state.State, length int) {
	for len(st.RetrieveSnapshot().Chain) < length {
		_, err := st.MineNewBlock(context.Background())
		ifErrFailNow(t, err)
	}
}

// snapshotServer serves the snapshot of the state as a peer would.
func snapshotServer(t *testing.T, st *state.State) *httptest.Server {
	f := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(st.RetrieveSnapshot())
	}

	srv := httptest.NewServer(http.HandlerFunc(f))
	t.Cleanup(srv.Close)

	return srv
}

// =============================================================================

func Test_MineCommitsCoinbase(t *testing.T) {
	st := newState(t, "http://localhost:3001")

	tx := database.NewTx(5, "A", "B")
	index, added := st.UpsertMempool(tx)
	if !added || index != 1 {
		t.Logf("got: %d %v", index, added)
		t.Logf("exp: %d %v", 1, true)
		t.Fatalf("Should add the transaction for the next block.")
	}

	block, err := st.MineNewBlock(context.Background())
	ifErrFailNow(t, err)

	if len(block.Transactions) != 2 {
		t.Logf("got: %d", len(block.Transactions))
		t.Logf("exp: %d", 2)
		t.Fatalf("Should include the pending transaction and the reward.")
	}

	coinbase := block.Transactions[1]
	if !coinbase.IsCoinbase() || coinbase.Recipient != nodeAddress || coinbase.Amount != testGenesis().MiningReward {
		t.Logf("got: %s", coinbase)
		t.Fatalf("Should include the reward for this node after the pending transactions.")
	}

	root, err := database.MerkleRoot(block.Transactions)
	ifErrFailNow(t, err)

	if block.MerkleRoot != root {
		t.Logf("got: %s", block.MerkleRoot)
		t.Logf("exp: %s", root)
		t.Fatalf("Should commit the merkle root to the reward.")
	}

	if st.QueryMempoolLength() != 0 {
		t.Fatalf("Should clear the mempool after the block is added.")
	}

	ad := st.QueryAddress(nodeAddress)
	if ad.Balance != testGenesis().MiningReward {
		t.Logf("got: %v", ad.Balance)
		t.Logf("exp: %v", testGenesis().MiningReward)
		t.Fatalf("Should credit the node with the reward.")
	}

	if err := database.ValidateChain(st.RetrieveSnapshot().Chain, testGenesis()); err != nil {
		t.Fatalf("Should produce a valid chain: %s", err)
	}
}

func Test_MineCancelled(t *testing.T) {
	gen := testGenesis()
	gen.Difficulty = 64

	hard, err := state.New(state.Config{
		NodeAddress: nodeAddress,
		NodeURL:     "http://localhost:3002",
		Genesis:     gen,
		Storage:     memory.New(),
	})
	ifErrFailNow(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := hard.MineNewBlock(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Logf("got: %v", err)
		t.Fatalf("Should stop mining when the context is done.")
	}

	if hard.QueryMempoolLength() != 0 {
		t.Fatalf("Should remove the reward from the mempool.")
	}

	if len(hard.RetrieveSnapshot().Chain) != 1 {
		t.Fatalf("Should not change the chain.")
	}
}

func Test_ProcessProposedBlock(t *testing.T) {
	miner := newState(t, "http://localhost:3001")
	receiver := newState(t, "http://localhost:3002")

	block, err := miner.MineNewBlock(context.Background())
	ifErrFailNow(t, err)

	pending := database.NewTx(3, "C", "D")
	receiver.UpsertMempool(pending)

	bad := block
	bad.PrevBlockHash = "0xbad"
	if err := receiver.ProcessProposedBlock(bad); !errors.Is(err, database.ErrInvalidChain) {
		t.Logf("got: %v", err)
		t.Fatalf("Should reject a block that doesn't extend the latest block.")
	}

	if receiver.QueryMempoolLength() != 1 || len(receiver.RetrieveSnapshot().Chain) != 1 {
		t.Fatalf("Should not change the state on a rejected block.")
	}

	if err := receiver.ProcessProposedBlock(block); err != nil {
		t.Fatalf("Should accept the mined block: %s", err)
	}

	if receiver.RetrieveLatestBlock().Hash != block.Hash || receiver.QueryMempoolLength() != 0 {
		t.Fatalf("Should append the block and clear the mempool.")
	}

	// The reward shared after mining is already confirmed.
	if _, added := receiver.UpsertMempool(block.Transactions[0]); added {
		t.Fatalf("Should not add a confirmed transaction to the mempool.")
	}
}

func Test_Consensus(t *testing.T) {
	peerA := newState(t, "http://a")
	mineBlocks(t, peerA, 5)
	peerA.UpsertMempool(database.NewTx(1, "A", "B"))

	peerB := newState(t, "http://b")
	mineBlocks(t, peerB, 4)

	srvA := snapshotServer(t, peerA)
	srvB := snapshotServer(t, peerB)

	local := newState(t, "http://localhost:3001", srvA.URL, srvB.URL)
	mineBlocks(t, local, 3)

	chain, replaced := local.Consensus(context.Background())
	if !replaced {
		t.Fatalf("Should replace the chain with the longest chain.")
	}

	expChain := peerA.RetrieveSnapshot().Chain
	if len(chain) != 5 || chain[4].Hash != expChain[4].Hash {
		t.Logf("got: %d", len(chain))
		t.Logf("exp: %d", 5)
		t.Fatalf("Should adopt the chain of the longest peer.")
	}

	if local.RetrieveLatestBlock().Hash != expChain[4].Hash {
		t.Fatalf("Should update the latest block.")
	}

	if local.QueryMempoolLength() != 1 {
		t.Logf("got: %d", local.QueryMempoolLength())
		t.Logf("exp: %d", 1)
		t.Fatalf("Should adopt the mempool of the longest peer.")
	}

	if _, replaced := local.Consensus(context.Background()); replaced {
		t.Fatalf("Should keep the chain once it is the longest.")
	}
}

func Test_ConsensusInvalid(t *testing.T) {
	peerA := newState(t, "http://a")
	mineBlocks(t, peerA, 5)

	snapshot := peerA.RetrieveSnapshot()
	snapshot.Chain[2].Nonce++

	f := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(snapshot)
	}
	srv := httptest.NewServer(http.HandlerFunc(f))
	defer srv.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	defer down.Close()

	local := newState(t, "http://localhost:3001", down.URL, srv.URL)
	mineBlocks(t, local, 2)
	latest := local.RetrieveLatestBlock()

	chain, replaced := local.Consensus(context.Background())
	if replaced || len(chain) != 2 || local.RetrieveLatestBlock().Hash != latest.Hash {
		t.Fatalf("Should keep the local chain when the longest chain is invalid.")
	}
}

func Test_RegisterAndBroadcastPeer(t *testing.T) {
	var mu sync.Mutex
	calls := make(map[string][]string)

	record := func(name string) *httptest.Server {
		f := func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)

			mu.Lock()
			calls[name] = append(calls[name], r.URL.Path)
			mu.Unlock()

			w.WriteHeader(http.StatusNoContent)
		}

		srv := httptest.NewServer(http.HandlerFunc(f))
		t.Cleanup(srv.Close)

		return srv
	}

	existing := record("existing")
	joining := record("joining")

	st := newState(t, "http://localhost:3001", existing.URL)

	failed := st.RegisterAndBroadcastPeer(context.Background(), peer.New(joining.URL))
	if len(failed) != 0 {
		t.Fatalf("Should reach every peer: %v", failed)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(calls["existing"]) != 1 || calls["existing"][0] != "/v1/register-node" {
		t.Logf("got: %v", calls["existing"])
		t.Fatalf("Should ask the existing peer to register the new node.")
	}

	if len(calls["joining"]) != 1 || calls["joining"][0] != "/v1/register-nodes-bulk" {
		t.Logf("got: %v", calls["joining"])
		t.Fatalf("Should send the network to the new node.")
	}

	peers := st.RetrieveKnownPeers()
	if len(peers) != 2 || peers[1].Host != joining.URL {
		t.Logf("got: %v", peers)
		t.Fatalf("Should register the new node after the existing peers.")
	}
}

func Test_AddKnownPeer(t *testing.T) {
	st := newState(t, "http://localhost:3001", "http://localhost:3001")

	if len(st.RetrieveKnownPeers()) != 0 {
		t.Fatalf("Should never hold the local node as a peer.")
	}

	if st.AddKnownPeer(peer.New("http://localhost:3001/")) {
		t.Fatalf("Should not add the local node.")
	}

	added := st.AddKnownPeers([]string{"http://b", "http://a", "http://b", ""})
	if added != 2 {
		t.Logf("got: %d", added)
		t.Logf("exp: %d", 2)
		t.Fatalf("Should add each new peer once.")
	}

	snapshot := st.RetrieveSnapshot()
	if len(snapshot.NetworkNodes) != 2 || snapshot.NetworkNodes[0] != "http://b" {
		t.Logf("got: %v", snapshot.NetworkNodes)
		t.Fatalf("Should keep peers in registration order.")
	}
}

func Test_QueryMerkle(t *testing.T) {
	st := newState(t, "http://localhost:3001")

	if _, err := st.QueryMerkleRoot(); !errors.Is(err, state.ErrNoTransactions) {
		t.Fatalf("Should not calculate a root with an empty mempool.")
	}

	tx := database.NewTx(2, "A", "B")
	st.UpsertMempool(tx)

	root, err := st.QueryMerkleRoot()
	ifErrFailNow(t, err)

	exp, err := database.MerkleRoot([]database.Tx{tx})
	ifErrFailNow(t, err)

	if root != exp {
		t.Logf("got: %s", root)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should calculate the root of the mempool.")
	}

	block, err := st.MineNewBlock(context.Background())
	ifErrFailNow(t, err)

	_, proof, order, err := st.QueryMerkleProof(tx.ID)
	ifErrFailNow(t, err)

	tree, err := block.Tree()
	ifErrFailNow(t, err)

	leaf, err := tx.Hash()
	ifErrFailNow(t, err)

	if !merkle.VerifyProof(tree.MerkleRoot, leaf, proof, order) {
		t.Fatalf("Should prove the transaction is in the block.")
	}
}
