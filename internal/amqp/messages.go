package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerSavedMessage announces that the ledger was persisted. It carries no
// rows; consumers reload the ledger from the local backend.
type LedgerSavedMessage struct {
	Revision  int64     `json:"revision"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingRevision = errors.New("ledger saved message without revision")

func NewLedgerSavedMessage(revision int64, records int) *LedgerSavedMessage {
	return &LedgerSavedMessage{
		Revision:  revision,
		Records:   records,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSavedMessageFromJSON decodes a message. A zero revision is rejected.
func LedgerSavedMessageFromJSON(data []byte) (*LedgerSavedMessage, error) {
	var msg LedgerSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Revision <= 0 {
		return nil, errMissingRevision
	}
	return &msg, nil
}
