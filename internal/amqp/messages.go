package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// RecordSyncMessage tells the worker that one transaction changed.
// It carries only identifiers; the worker fetches the current record from
// storage, so a stale message can never overwrite newer data.
type RecordSyncMessage struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(op, id, userID string) *RecordSyncMessage {
	return &RecordSyncMessage{
		Op:        op,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
