package amqp

import (
	"encoding/json"
	"time"
)

// Message types for the transaction export queue.
const (
	TypeSync   = "sync"
	TypeDelete = "delete"
)

// ExportMessage is a lightweight queue message for mirroring a transaction
// to the export sheet. It carries only identifiers; the worker fetches the
// full record from the database, so a stale message never exports stale data.
type ExportMessage struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage creates a message asking the worker to (re)export a transaction
func NewSyncMessage(id, userID int64) *ExportMessage {
	return &ExportMessage{
		Type:      TypeSync,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a message asking the worker to remove a transaction
// from the export sheet
func NewDeleteMessage(id, userID int64) *ExportMessage {
	return &ExportMessage{
		Type:      TypeDelete,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
