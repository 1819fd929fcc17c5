// Package peer maintains the peer related information such as the set
// of known peers.
package peer

import (
	"strings"
	"sync"
)

// Peer represents information about a Node in the network. The host is the
// base url other nodes use to reach it.
type Peer struct {
	Host string
}

// New contructs a new peer value. A trailing slash on the host is dropped
// so the same node always maps to the same peer.
func New(host string) Peer {
	return Peer{
		Host: strings.TrimRight(host, "/"),
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == strings.TrimRight(host, "/")
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known
// peers. Peers are returned in the order they were first added.
type PeerSet struct {
	mu    sync.RWMutex
	order []Peer
	set   map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It returns false if the peer was
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	ps.order = append(ps.order, peer)

	return true
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; !exists {
		return
	}

	delete(ps.set, peer)
	for i, p := range ps.order {
		if p == peer {
			ps.order = append(ps.order[:i:i], ps.order[i+1:]...)
			break
		}
	}
}

// Copy returns a list of the known peers, excluding the specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.order))
	for _, peer := range ps.order {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}

// Hosts returns the hosts of the known peers, excluding the specified host.
func (ps *PeerSet) Hosts(host string) []string {
	peers := ps.Copy(host)

	hosts := make([]string, len(peers))
	for i, peer := range peers {
		hosts[i] = peer.Host
	}

	return hosts
}
