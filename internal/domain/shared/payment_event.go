package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// PaymentEvent defines the Kafka message emitted for every persisted transaction
type PaymentEvent struct {
	TransactionID    uuid.UUID          `json:"transaction_id"`
	Payer            string             `json:"payer"`
	Payee            string             `json:"payee"`
	Amount           decimal.Decimal    `json:"amount"`
	Currency         string             `json:"currency"`
	PaymentReference *string            `json:"payment_reference,omitempty"`
	Status           transaction.Status `json:"status"`
	CorrelationID    string             `json:"correlation_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// NewPaymentEvent builds the event for txn, stamping the correlation ID carried by ctx
func NewPaymentEvent(ctx context.Context, txn *transaction.Transaction) *PaymentEvent {
	return &PaymentEvent{
		TransactionID:    txn.ID,
		Payer:            txn.Payer,
		Payee:            txn.Payee,
		Amount:           txn.Amount,
		Currency:         txn.Currency,
		PaymentReference: txn.PaymentReference,
		Status:           txn.Status,
		CorrelationID:    CorrelationIDFromContext(ctx),
		CreatedAt:        txn.CreatedAt,
	}
}
