package database

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CoinbaseSender is the sender recorded on a mining reward transaction.
// There is no real account behind it.
const CoinbaseSender = "00"

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	ID        string  `json:"id"`        // Unique id for the transaction.
	Amount    float64 `json:"amount"`    // Value moved from the sender to the recipient.
	Sender    string  `json:"sender"`    // Address sending the value.
	Recipient string  `json:"recipient"` // Address receiving the value.
}

// NewTx constructs a new transaction with a generated id.
func NewTx(amount float64, sender string, recipient string) Tx {
	return Tx{
		ID:        NewTxID(),
		Amount:    amount,
		Sender:    sender,
		Recipient: recipient,
	}
}

// NewCoinbaseTx constructs the reward transaction crediting the miner of
// a block.
func NewCoinbaseTx(reward float64, minerAddress string) Tx {
	return NewTx(reward, CoinbaseSender, minerAddress)
}

// NewTxID generates a unique id for a transaction.
func NewTxID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsCoinbase reports if this is a mining reward transaction.
func (tx Tx) IsCoinbase() bool {
	return tx.Sender == CoinbaseSender
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction. The same content always produces the same hash.
func (tx Tx) Hash() ([]byte, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(data)
	return hash[:], nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.ID == otherTx.ID
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%v", tx.ID, tx.Sender, tx.Recipient, tx.Amount)
}
