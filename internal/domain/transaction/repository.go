package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores admitted transactions and looks them up by reference
type Repository interface {
	// AddTransaction durably records txn. It is not idempotent.
	AddTransaction(ctx context.Context, txn *Transaction) (*Transaction, error)

	// GetByReference returns ErrTransactionNotFound if no transaction has the given id
	GetByReference(ctx context.Context, id uuid.UUID) (*Transaction, error)
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// An empty target ID matches any ErrTransactionNotFound
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
