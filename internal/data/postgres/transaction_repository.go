// Package postgres implements the transaction store and its outbox on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/payment-gateway/internal/domain/outbox"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/payment-gateway/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements transaction.Repository for PostgreSQL. Every
// insert also queues a PaymentEvent in the outbox within the same transaction.
type TransactionRepository struct {
	db         persistence.TxBeginner
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

var _ transaction.Repository = (*TransactionRepository)(nil)

func NewTransactionRepository(logger *slog.Logger, db persistence.TxBeginner, outboxRepo outbox.Repository) *TransactionRepository {
	return &TransactionRepository{
		db:         db,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// AddTransaction inserts txn and its outbox message atomically
func (r *TransactionRepository) AddTransaction(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, error) {
	message, err := outbox.NewMessage(shared.NewPaymentEvent(ctx, txn))
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox message: %w", err)
	}

	query := `
		INSERT INTO transactions (id, payer, payee, amount, currency, payment_reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err = persistence.ExecuteTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			txn.ID,
			txn.Payer,
			txn.Payee,
			txn.Amount.String(),
			txn.Currency,
			txn.PaymentReference,
			txn.Status,
			txn.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		return r.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		r.logger.Error("Failed to add transaction",
			"transaction_id", txn.ID.String(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	r.logger.Debug("Transaction stored",
		"transaction_id", txn.ID.String(),
		"outbox_id", message.ID,
		"status", string(txn.Status),
	)

	return txn, nil
}

// GetByReference loads a transaction by id
func (r *TransactionRepository) GetByReference(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, payer, payee, amount::text, currency, payment_reference, status, created_at
		FROM transactions
		WHERE id = $1
	`

	var (
		txn    transaction.Transaction
		amount string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&txn.ID,
		&txn.Payer,
		&txn.Payee,
		&amount,
		&txn.Currency,
		&txn.PaymentReference,
		&txn.Status,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}
	txn.CreatedAt = txn.CreatedAt.UTC()

	return &txn, nil
}
