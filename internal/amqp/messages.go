package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

// Event sources carried on TransactionPostedMessage.
const (
	SourceManual      = "manual"
	SourceInstallment = "installment"
	SourceRecurring   = "recurring"
	SourceImport      = "import"
)

// TransactionPostedMessage announces a stored transaction. It carries the
// full record so consumers never need to read the database.
type TransactionPostedMessage struct {
	MessageID   string           `json:"message_id"`
	Source      string           `json:"source"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionPostedMessage stamps tx with a fresh message id.
func NewTransactionPostedMessage(tx core.Transaction, source string) *TransactionPostedMessage {
	return &TransactionPostedMessage{
		MessageID:   uuid.NewString(),
		Source:      source,
		Transaction: tx,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionPostedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionPostedMessageFromJSON decodes and sanity checks a message body.
func TransactionPostedMessageFromJSON(data []byte) (*TransactionPostedMessage, error) {
	var msg TransactionPostedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.MessageID == "" {
		return nil, fmt.Errorf("message without id")
	}
	if err := msg.Transaction.Validate(); err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.MessageID, err)
	}
	return &msg, nil
}
