// Package consensus implements the longest chain rule used to resolve
// disagreements between nodes.
package consensus

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Snapshot represents the full state of a node as exchanged between nodes.
type Snapshot struct {
	Chain               []database.Block `json:"chain"`
	PendingTransactions []database.Tx    `json:"pending_transactions"`
	CurrentNodeURL      string           `json:"current_node_url"`
	NetworkNodes        []string         `json:"network_nodes"`
}

// Resolve selects the snapshot whose chain should replace a local chain of
// the specified length. The longest chain wins and only a strictly longer
// chain beats the current choice, so on equal length the earliest snapshot
// is kept. The selected chain must be valid for the genesis, otherwise the
// local chain is kept. Chain length is the only measure used.
func Resolve(localLength int, snapshots []Snapshot, gen genesis.Genesis) (Snapshot, bool, error) {
	maxLength := localLength
	candidate := -1

	for i, snapshot := range snapshots {
		if len(snapshot.Chain) > maxLength {
			maxLength = len(snapshot.Chain)
			candidate = i
		}
	}

	if candidate == -1 {
		return Snapshot{}, false, nil
	}

	if err := database.ValidateChain(snapshots[candidate].Chain, gen); err != nil {
		return Snapshot{}, false, err
	}

	return snapshots[candidate], true, nil
}
