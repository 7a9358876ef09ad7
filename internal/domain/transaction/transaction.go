// Package transaction holds the payment transaction entity, the factory that
// validates raw payment input, and the outcome policy that assigns a status to
// every admitted transaction.
package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation messages returned to the caller, in evaluation order
const (
	MsgInvalidPayer    = "Payer must be a numeric 10-digit account number."
	MsgInvalidPayee    = "Payee must be a numeric 10-digit account number."
	MsgInvalidAmount   = "Amount must be greater than zero."
	MsgInvalidCurrency = "Currency must be a 3-letter ISO code."
)

const (
	accountNumberLength = 10
	currencyCodeLength  = 3
)

var (
	// ErrCreationFailed reports an unexpected fault while building a transaction.
	// It is never used for malformed input.
	ErrCreationFailed = errors.New("an unexpected error occurred while creating the transaction")

	// ErrStatusAlreadyAssigned is returned when a second status is assigned
	ErrStatusAlreadyAssigned = errors.New("transaction status already assigned")
)

// id and clock sources, swapped in tests
var (
	newID = uuid.NewRandom
	now   = func() time.Time { return time.Now().UTC() }
)

// Transaction is a single payment-initiation record
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	Payer            string          `json:"payer"`
	Payee            string          `json:"payee"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ValidationError describes the first input field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Create validates the raw payment fields and returns a new transaction with a
// fresh identifier and creation time. The status is left unassigned.
//
// Checks run in a fixed order and the first failure is returned as a
// ValidationError. Any other error wraps ErrCreationFailed.
func Create(payer, payee string, amount decimal.Decimal, currency string, paymentReference *string) (*Transaction, error) {
	if !isAccountNumber(payer) {
		return nil, ValidationError{Field: "payer", Message: MsgInvalidPayer}
	}
	if !isAccountNumber(payee) {
		return nil, ValidationError{Field: "payee", Message: MsgInvalidPayee}
	}
	if !amount.IsPositive() {
		return nil, ValidationError{Field: "amount", Message: MsgInvalidAmount}
	}
	if strings.TrimSpace(currency) == "" || utf8.RuneCountInString(currency) != currencyCodeLength {
		return nil, ValidationError{Field: "currency", Message: MsgInvalidCurrency}
	}

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}

	return &Transaction{
		ID:               id,
		Payer:            payer,
		Payee:            payee,
		Amount:           amount,
		Currency:         currency,
		PaymentReference: paymentReference,
		CreatedAt:        now(),
	}, nil
}

// AssignStatus records the outcome of the transaction. A status can be set once.
func (t *Transaction) AssignStatus(status Status) error {
	if t.Status != "" {
		return ErrStatusAlreadyAssigned
	}
	t.Status = status
	return nil
}

// isAccountNumber reports whether s is exactly ten ASCII digits
func isAccountNumber(s string) bool {
	if len(s) != accountNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
