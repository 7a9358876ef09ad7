package handler

import "github.com/shopspring/decimal"

// InitiatePaymentRequest represents a request to initiate a payment.
// Field rules are enforced by transaction.Create, not by binding tags.
type InitiatePaymentRequest struct {
	Payer          string          `json:"payer"`
	Payee          string          `json:"payee"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PayerReference *string         `json:"payer_reference,omitempty"`
}

// PaymentResponse represents the outcome of a payment initiation
type PaymentResponse struct {
	TransactionReference string `json:"transaction_reference"`
	StatusCode           int    `json:"status_code"`
	Message              string `json:"message"`
}

// TransactionStatusResponse represents a stored transaction's status
type TransactionStatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
