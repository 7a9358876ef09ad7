package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// PaymentService defines the payment operations exposed over HTTP
type PaymentService interface {
	// ProcessPayment validates the request, assigns a status and stores the transaction.
	// Validation failures are reported in the result, not as an error.
	ProcessPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error)

	// GetTransactionStatus returns nil if the transaction is not found
	GetTransactionStatus(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

// OutcomeRecorder counts payment results by status
type OutcomeRecorder interface {
	RecordOutcome(status string)
}

// PaymentRequest carries the raw payment fields supplied by the caller
type PaymentRequest struct {
	Payer            string
	Payee            string
	Amount           decimal.Decimal
	Currency         string
	PaymentReference *string
}

// PaymentResult is the outcome of a payment initiation. TransactionReference is
// uuid.Nil when the request was rejected.
type PaymentResult struct {
	TransactionReference uuid.UUID
	StatusCode           int
	Message              string
}
