package peer_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			ps.Remove(peer.New("host1"))
			peers = ps.Copy("")
			if len(peers) != len(tst.peers)-1 || peers[0].Host != "host2" {
				t.Logf("Test %s:\tgot: %v", tst.name, peers)
				t.Fatalf("Test %s:\tShould be able to remove a peer.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Order(t *testing.T) {
	ps := peer.NewPeerSet()

	hosts := []string{"http://c:3000", "http://a:3000", "http://b:3000"}
	for _, host := range hosts {
		ps.Add(peer.New(host))
	}

	if ps.Add(peer.New("http://a:3000/")) {
		t.Fatalf("Should not add a peer twice.")
	}

	got := ps.Hosts("")
	for i := range hosts {
		if got[i] != hosts[i] {
			t.Logf("got: %v", got)
			t.Logf("exp: %v", hosts)
			t.Fatalf("Should keep peers in the order they were added.")
		}
	}
}
