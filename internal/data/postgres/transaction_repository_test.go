package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *transaction.Transaction {
	reference := "order-1001"
	return &transaction.Transaction{
		ID:               uuid.New(),
		Payer:            "1234567890",
		Payee:            "0987654321",
		Amount:           decimal.RequireFromString("250.75"),
		Currency:         "EUR",
		PaymentReference: &reference,
		Status:           transaction.StatusSuccess,
		CreatedAt:        time.Now().UTC(),
	}
}

func newTransactionRepo(mock pgxmock.PgxPoolIface) *TransactionRepository {
	logger := newTestLogger()
	return NewTransactionRepository(logger, mock, NewOutboxRepository(logger, mock))
}

const (
	insertTransactionQuery = `INSERT INTO transactions`
	insertOutboxQuery      = `INSERT INTO transaction_outbox`
)

func TestTransactionRepository_AddTransaction(t *testing.T) {
	ctx := shared.ContextWithCorrelationID(context.Background(), "corr-abc")

	t.Run("CommitsTransactionAndOutbox", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := newTransactionRepo(mock)
		txn := newTestTransaction()

		var payload json.RawMessage
		mock.ExpectBegin()
		mock.ExpectExec(insertTransactionQuery).
			WithArgs(txn.ID, txn.Payer, txn.Payee, "250.75", txn.Currency, txn.PaymentReference, txn.Status, txn.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(insertOutboxQuery).
			WithArgs(txn.ID, payloadCapture{&payload}, shared.OutboxStatusPending, 0, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectCommit()

		stored, err := repo.AddTransaction(ctx, txn)
		require.NoError(t, err)
		assert.Same(t, txn, stored)
		assert.NoError(t, mock.ExpectationsWereMet())

		var event shared.PaymentEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, txn.ID, event.TransactionID)
		assert.Equal(t, transaction.StatusSuccess, event.Status)
		assert.Equal(t, "corr-abc", event.CorrelationID)
		assert.True(t, txn.Amount.Equal(event.Amount))
	})

	t.Run("RollsBackWhenTransactionInsertFails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := newTransactionRepo(mock)
		txn := newTestTransaction()
		dbErr := errors.New("disk full")

		mock.ExpectBegin()
		mock.ExpectExec(insertTransactionQuery).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		stored, err := repo.AddTransaction(ctx, txn)
		assert.Nil(t, stored)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to add transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenOutboxInsertFails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := newTransactionRepo(mock)
		txn := newTestTransaction()
		dbErr := errors.New("outbox unavailable")

		mock.ExpectBegin()
		mock.ExpectExec(insertTransactionQuery).
			WithArgs(txn.ID, txn.Payer, txn.Payee, "250.75", txn.Currency, txn.PaymentReference, txn.Status, txn.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(insertOutboxQuery).
			WithArgs(txn.ID, pgxmock.AnyArg(), shared.OutboxStatusPending, 0, pgxmock.AnyArg()).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		stored, err := repo.AddTransaction(ctx, txn)
		assert.Nil(t, stored)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SendsAmountAtFullScale", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := newTransactionRepo(mock)
		txn := newTestTransaction()
		txn.Amount = decimal.RequireFromString("0.0000001")

		mock.ExpectBegin()
		mock.ExpectExec(insertTransactionQuery).
			WithArgs(txn.ID, txn.Payer, txn.Payee, "0.0000001", txn.Currency, txn.PaymentReference, txn.Status, txn.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(insertOutboxQuery).
			WithArgs(txn.ID, pgxmock.AnyArg(), shared.OutboxStatusPending, 0, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
		mock.ExpectCommit()

		_, err = repo.AddTransaction(ctx, txn)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := newTransactionRepo(mock)
		beginErr := errors.New("too many connections")
		mock.ExpectBegin().WillReturnError(beginErr)

		stored, err := repo.AddTransaction(ctx, newTestTransaction())
		assert.Nil(t, stored)
		assert.ErrorIs(t, err, beginErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByReference(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newTransactionRepo(mock)
	query := `SELECT id, payer, payee, amount::text, currency, payment_reference, status, created_at`
	columns := []string{"id", "payer", "payee", "amount", "currency", "payment_reference", "status", "created_at"}

	t.Run("Found", func(t *testing.T) {
		expected := newTestTransaction()
		rows := pgxmock.NewRows(columns).AddRow(
			expected.ID, expected.Payer, expected.Payee, "250.7500", expected.Currency,
			expected.PaymentReference, expected.Status, expected.CreatedAt,
		)
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(rows)

		txn, err := repo.GetByReference(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, txn.ID)
		assert.Equal(t, expected.Payer, txn.Payer)
		assert.Equal(t, expected.Payee, txn.Payee)
		assert.True(t, expected.Amount.Equal(txn.Amount))
		assert.Equal(t, expected.Currency, txn.Currency)
		assert.Equal(t, *expected.PaymentReference, *txn.PaymentReference)
		assert.Equal(t, transaction.StatusSuccess, txn.Status)
		assert.True(t, expected.CreatedAt.Equal(txn.CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("KeepsSubUnitPrecision", func(t *testing.T) {
		expected := newTestTransaction()
		for _, raw := range []string{"0.0000001", "0.12345"} {
			rows := pgxmock.NewRows(columns).AddRow(
				expected.ID, expected.Payer, expected.Payee, raw, expected.Currency,
				expected.PaymentReference, expected.Status, expected.CreatedAt,
			)
			mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(rows)

			txn, err := repo.GetByReference(ctx, expected.ID)
			require.NoError(t, err)
			assert.Equal(t, raw, txn.Amount.String())
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		txn, err := repo.GetByReference(ctx, id)
		assert.Nil(t, txn)
		assert.ErrorIs(t, err, transaction.ErrTransactionNotFound{ID: id})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		id := uuid.New()
		dbErr := errors.New("timeout")
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(dbErr)

		txn, err := repo.GetByReference(ctx, id)
		assert.Nil(t, txn)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, transaction.ErrTransactionNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// payloadCapture matches any outbox payload and keeps a copy for inspection
type payloadCapture struct {
	dst *json.RawMessage
}

func (p payloadCapture) Match(v interface{}) bool {
	raw, ok := v.(json.RawMessage)
	if !ok {
		return false
	}
	*p.dst = append((*p.dst)[:0], raw...)
	return true
}
