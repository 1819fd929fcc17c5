// Package genesis maintains access to the genesis settings every node in
// the network must share.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis information.
type Genesis struct {
	Date         time.Time `json:"date"`          // Timestamp recorded in the genesis block.
	Nonce        uint64    `json:"nonce"`         // Nonce recorded in the genesis block. Not required to solve the puzzle.
	Difficulty   uint16    `json:"difficulty"`    // Number of leading zero nibbles a block hash requires.
	MiningReward float64   `json:"mining_reward"` // Amount credited to the miner of a block.
}

// Default returns the genesis information used when no genesis file is
// provided. Nodes constructed with the default share the same genesis block.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Nonce:        100,
		Difficulty:   4,
		MiningReward: 6.25,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Values missing from the file
// keep their default.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if genesis.Difficulty > 64 {
		return Genesis{}, fmt.Errorf("difficulty %d exceeds the hash length", genesis.Difficulty)
	}

	return genesis, nil
}
