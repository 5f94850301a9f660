package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEventMessage tells the snapshot worker that the
// transaction data changed. It carries only the adapter reference of
// the new record; the worker refetches everything it needs.
type TransactionEventMessage struct {
	Ref       string    `json:"ref"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates an event for a newly appended
// transaction.
func NewTransactionEventMessage(ref, category string) *TransactionEventMessage {
	return &TransactionEventMessage{
		Ref:       ref,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
