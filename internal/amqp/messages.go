package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event names carried on the wire.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
	EventItemParked     = "item.parked"
	EventItemConverted  = "item.converted"
	EventItemUnparked   = "item.unparked"
	EventBudgetChanged  = "budget.changed"
	EventLedgerCleared  = "ledger.cleared"
	EventBackupRestored = "backup.restored"
)

// LedgerEventMessage is a lightweight audit record for a single ledger
// mutation. Consumers that need the full record fetch it from the store.
type LedgerEventMessage struct {
	Event       string    `json:"event"`
	RecordID    int64     `json:"recordId,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEventMessage stamps an event with the current time.
func NewLedgerEventMessage(event string, recordID, amountCents int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:       event,
		RecordID:    recordID,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
