package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/domain/transaction"
)

// Record is an archived payment event. Amount keeps its decimal text form so
// no precision is lost in BSON.
type Record struct {
	TransactionID    uuid.UUID          `json:"transaction_id" bson:"transaction_id"`
	Payer            string             `json:"payer" bson:"payer"`
	Payee            string             `json:"payee" bson:"payee"`
	Amount           string             `json:"amount" bson:"amount"`
	Currency         string             `json:"currency" bson:"currency"`
	PaymentReference *string            `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	Status           transaction.Status `json:"status" bson:"status"`
	CorrelationID    string             `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	ArchivedAt       time.Time          `json:"archived_at" bson:"archived_at"`
}

// NewRecord converts a consumed payment event into an archive record
func NewRecord(event *shared.PaymentEvent) *Record {
	return &Record{
		TransactionID:    event.TransactionID,
		Payer:            event.Payer,
		Payee:            event.Payee,
		Amount:           event.Amount.String(),
		Currency:         event.Currency,
		PaymentReference: event.PaymentReference,
		Status:           event.Status,
		CorrelationID:    event.CorrelationID,
		CreatedAt:        event.CreatedAt,
		ArchivedAt:       time.Now().UTC(),
	}
}
