package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

const baseURL = "%s/v1"

// netClient performs the http calls made to peers.
type netClient struct {
	client *http.Client
}

func newNetClient() netClient {
	return netClient{
		client: &http.Client{},
	}
}

// =============================================================================

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers. The hosts of the peers that could not be reached are returned.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) []string {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	body := struct {
		NewBlock database.Block `json:"newBlock"`
	}{
		NewBlock: block,
	}

	f := func(ctx context.Context, host string) error {
		url := fmt.Sprintf("%s/receive-new-block", fmt.Sprintf(baseURL, host))
		return s.client.send(ctx, http.MethodPost, url, body, nil)
	}

	return s.fanOut(ctx, "NetSendBlockToPeers", s.knownPeers.Hosts(s.nodeURL), f)
}

// NetSendTxToPeers shares a transaction with the known peers. The hosts of
// the peers that could not be reached are returned.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Tx) []string {
	s.evHandler("state: NetSendTxToPeers: started: tx[%s]", tx.ID)
	defer s.evHandler("state: NetSendTxToPeers: completed: tx[%s]", tx.ID)

	f := func(ctx context.Context, host string) error {
		url := fmt.Sprintf("%s/transaction", fmt.Sprintf(baseURL, host))
		return s.client.send(ctx, http.MethodPost, url, tx, nil)
	}

	return s.fanOut(ctx, "NetSendTxToPeers", s.knownPeers.Hosts(s.nodeURL), f)
}

// NetRequestPeerSnapshots asks every known peer for its full state. The
// snapshots are returned in peer set order. Peers that fail to respond are
// left out.
func (s *State) NetRequestPeerSnapshots(ctx context.Context) []consensus.Snapshot {
	s.evHandler("state: NetRequestPeerSnapshots: started")
	defer s.evHandler("state: NetRequestPeerSnapshots: completed")

	hosts := s.knownPeers.Hosts(s.nodeURL)
	results := make([]*consensus.Snapshot, len(hosts))

	f := func(ctx context.Context, i int, host string) error {
		url := fmt.Sprintf("%s/blockchain", fmt.Sprintf(baseURL, host))

		var snapshot consensus.Snapshot
		if err := s.client.send(ctx, http.MethodGet, url, nil, &snapshot); err != nil {
			return err
		}

		s.evHandler("state: NetRequestPeerSnapshots: peer[%s]: blocks[%d]", host, len(snapshot.Chain))
		results[i] = &snapshot

		return nil
	}

	s.fanOutIndexed(ctx, "NetRequestPeerSnapshots", hosts, f)

	snapshots := make([]consensus.Snapshot, 0, len(hosts))
	for _, snapshot := range results {
		if snapshot != nil {
			snapshots = append(snapshots, *snapshot)
		}
	}

	return snapshots
}

// NetRegisterPeer asks the specified hosts to register the peer. The hosts
// that could not be reached are returned.
func (s *State) NetRegisterPeer(ctx context.Context, hosts []string, pr peer.Peer) []string {
	body := struct {
		NewNodeURL string `json:"newNodeUrl"`
	}{
		NewNodeURL: pr.Host,
	}

	f := func(ctx context.Context, host string) error {
		url := fmt.Sprintf("%s/register-node", fmt.Sprintf(baseURL, host))
		return s.client.send(ctx, http.MethodPost, url, body, nil)
	}

	return s.fanOut(ctx, "NetRegisterPeer", hosts, f)
}

// NetRegisterPeersBulk sends the set of hosts to the peer so it can
// register all of them.
func (s *State) NetRegisterPeersBulk(ctx context.Context, pr peer.Peer, hosts []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	body := struct {
		AllNetworkNodes []string `json:"allNetworkNodes"`
	}{
		AllNetworkNodes: hosts,
	}

	url := fmt.Sprintf("%s/register-nodes-bulk", fmt.Sprintf(baseURL, pr.Host))
	return s.client.send(ctx, http.MethodPost, url, body, nil)
}

// NetRequestAddPeer asks the specified peer to register this node and
// share it with the rest of the network.
func (s *State) NetRequestAddPeer(ctx context.Context, pr peer.Peer) error {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	body := struct {
		NewNodeURL string `json:"newNodeUrl"`
	}{
		NewNodeURL: s.nodeURL,
	}

	url := fmt.Sprintf("%s/register-and-broadcast-node", fmt.Sprintf(baseURL, pr.Host))
	return s.client.send(ctx, http.MethodPost, url, body, nil)
}

// =============================================================================

// fanOut executes the function against every host concurrently. Each call is
// bounded by the peer timeout. Failures are reported through the event
// handler and the failing hosts are returned in the order provided.
func (s *State) fanOut(ctx context.Context, op string, hosts []string, f func(ctx context.Context, host string) error) []string {
	fi := func(ctx context.Context, i int, host string) error {
		return f(ctx, host)
	}

	return s.fanOutIndexed(ctx, op, hosts, fi)
}

// fanOutIndexed is fanOut with the position of the host provided to
// the function.
func (s *State) fanOutIndexed(ctx context.Context, op string, hosts []string, f func(ctx context.Context, i int, host string) error) []string {
	errs := make([]error, len(hosts))

	var wg sync.WaitGroup
	wg.Add(len(hosts))

	for i, host := range hosts {
		go func(i int, host string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			errs[i] = f(ctx, i, host)
		}(i, host)
	}

	wg.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			s.evHandler("state: %s: WARNING: peer[%s]: %s", op, hosts[i], err)
			failed = append(failed, hosts[i])
			continue
		}
		s.evHandler("state: %s: sent to peer[%s]", op, hosts[i])
	}

	return failed
}

// send is a helper function to send an HTTP request to a node.
func (nc netClient) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := nc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("status[%d]: %w", resp.StatusCode, errors.New(string(bytes.TrimSpace(msg))))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
