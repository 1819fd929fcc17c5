package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// AddKnownPeer provides the ability to add a new peer. The local node and
// peers already known are ignored.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Host == "" || pr.Match(s.nodeURL) {
		return false
	}

	if !s.knownPeers.Add(pr) {
		return false
	}

	s.evHandler("state: AddKnownPeer: peer[%s]", pr.Host)

	return true
}

// RemoveKnownPeer provides the ability to remove a peer.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// AddKnownPeers adds every host in the list to the set of known peers.
func (s *State) AddKnownPeers(hosts []string) int {
	var added int
	for _, host := range hosts {
		if s.AddKnownPeer(peer.New(host)) {
			added++
		}
	}

	return added
}

// RegisterAndBroadcastPeer adds the peer to the set of known peers, asks
// every other known peer to register it and then sends the new peer the
// complete set of nodes, including this node. The hosts of the peers that
// could not be reached are returned.
func (s *State) RegisterAndBroadcastPeer(ctx context.Context, pr peer.Peer) []string {
	s.AddKnownPeer(pr)

	var others []string
	for _, host := range s.knownPeers.Hosts(s.nodeURL) {
		if !pr.Match(host) {
			others = append(others, host)
		}
	}

	failed := s.NetRegisterPeer(ctx, others, pr)

	if pr.Match(s.nodeURL) {
		return failed
	}

	hosts := append(s.knownPeers.Hosts(pr.Host), s.nodeURL)
	if err := s.NetRegisterPeersBulk(ctx, pr, hosts); err != nil {
		s.evHandler("state: RegisterAndBroadcastPeer: WARNING: peer[%s]: %s", pr.Host, err)
		failed = append(failed, pr.Host)
	}

	return failed
}
