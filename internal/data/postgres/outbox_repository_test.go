package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/payment-gateway/internal/domain/outbox"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	message := &outbox.Message{
		TransactionID: uuid.New(),
		Payload:       json.RawMessage(`{"status":"SUCCESS"}`),
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	query := `INSERT INTO transaction_outbox`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(message.TransactionID, message.Payload, message.Status, 0, message.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(17)))

		require.NoError(t, repo.Create(ctx, message))
		assert.Equal(t, int64(17), message.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(message.TransactionID, message.Payload, message.Status, 0, message.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, message)
		var dupErr outbox.ErrDuplicateMessage
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, message.TransactionID, dupErr.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(message.TransactionID, message.Payload, message.Status, 0, message.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, message)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	columns := []string{"id", "transaction_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}
	query := `SELECT id, transaction_id, payload, status, attempts, created_at, last_attempt_at`

	t.Run("Success", func(t *testing.T) {
		now := time.Now().UTC()
		lastAttempt := now.Add(-time.Second)
		first, second := uuid.New(), uuid.New()

		rows := pgxmock.NewRows(columns).
			AddRow(int64(1), first, json.RawMessage(`{}`), shared.OutboxStatusPending, 0, now.Add(-time.Minute), (*time.Time)(nil)).
			AddRow(int64(2), second, json.RawMessage(`{}`), shared.OutboxStatusPending, 2, now, &lastAttempt)
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusPending, 10).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, first, messages[0].TransactionID)
		assert.Nil(t, messages[0].LastAttemptAt)
		assert.Equal(t, 2, messages[1].Attempts)
		require.NotNil(t, messages[1].LastAttemptAt)
		assert.Equal(t, lastAttempt, *messages[1].LastAttemptAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusPending, 5).WillReturnRows(pgxmock.NewRows(columns))

		messages, err := repo.GetPending(ctx, 5)
		assert.NoError(t, err)
		assert.Empty(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusPending, 5).WillReturnError(dbErr)

		messages, err := repo.GetPending(ctx, 5)
		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	query := `UPDATE transaction_outbox\s+SET status`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 3, shared.OutboxStatusProcessed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 99, shared.OutboxStatusProcessed)
		assert.Equal(t, outbox.ErrMessageNotFound{ID: 99}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(shared.OutboxStatusFailedToPublish, pgxmock.AnyArg(), int64(3)).
			WillReturnError(dbErr)

		err := repo.UpdateStatus(ctx, 3, shared.OutboxStatusFailedToPublish)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	query := `SET attempts = attempts \+ 1`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(pgxmock.AnyArg(), int64(4)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.IncrementAttempts(ctx, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(pgxmock.AnyArg(), int64(4)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.IncrementAttempts(ctx, 4)
		assert.Equal(t, outbox.ErrMessageNotFound{ID: 4}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_WithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := NewOutboxRepository(newTestLogger(), mock)
	txRepo, ok := repo.WithTx(tx).(*OutboxRepository)
	require.True(t, ok)
	assert.Equal(t, tx, txRepo.querier)
	assert.Equal(t, repo.logger, txRepo.logger)
}
