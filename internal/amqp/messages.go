package amqp

import (
	"encoding/json"
	"time"

	"floosafandy/internal/core"
)

const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// TransactionSyncMessage asks the worker to mirror a ledger change into the
// backup journal. For KindSync it carries only the ID and version and the
// worker re-reads the row; for KindDelete the row is already gone, so the
// tombstone carries everything the journal entry needs.
type TransactionSyncMessage struct {
	Kind      string     `json:"kind"`
	ID        int64      `json:"id"`
	Version   int64      `json:"version,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Tombstone *Tombstone `json:"tombstone,omitempty"`
}

// Tombstone is the snapshot of a deleted transaction.
type Tombstone struct {
	Owner       string         `json:"owner"`
	AccountID   int64          `json:"account_id"`
	Date        time.Time      `json:"date"`
	Direction   core.Direction `json:"direction"`
	AmountCents int64          `json:"amount_cents"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
}

func NewSyncMessage(id, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindSync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewDeleteMessage(tx core.Transaction) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindDelete,
		ID:        tx.ID,
		Timestamp: time.Now(),
		Tombstone: &Tombstone{
			Owner:       tx.Owner,
			AccountID:   tx.AccountID,
			Date:        tx.Date,
			Direction:   tx.Direction,
			AmountCents: tx.Amount.Cents,
			Description: tx.Description,
			Category:    tx.Category,
		},
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
