package amqp

import (
	"encoding/json"
	"time"
)

// LedgerSyncMessage asks the ledger worker to mirror one ledger entry to the
// spreadsheet. It carries only the entry ID; the worker fetches the full
// entry from the database so the queue never holds stale amounts.
type LedgerSyncMessage struct {
	EntryID   string    `json:"entryId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(entryID string) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
