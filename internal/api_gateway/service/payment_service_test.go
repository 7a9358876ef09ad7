package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransactionRepository struct {
	mock.Mock
}

var _ transaction.Repository = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) AddTransaction(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

type MockOutcomeRecorder struct {
	mock.Mock
}

func (m *MockOutcomeRecorder) RecordOutcome(status string) {
	m.Called(status)
}

// fixedAssignor always yields the same status
type fixedAssignor transaction.Status

func (f fixedAssignor) Assign(_ *transaction.Transaction) transaction.Status {
	return transaction.Status(f)
}

func validRequest() *PaymentRequest {
	return &PaymentRequest{
		Payer:    "1234567890",
		Payee:    "0987654321",
		Amount:   decimal.RequireFromString("50.00"),
		Currency: "USD",
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestPaymentServiceImpl_ProcessPayment(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		status       transaction.Status
		expectedCode int
		expectedMsg  string
	}{
		{transaction.StatusPending, 100, "Transaction Pending"},
		{transaction.StatusSuccess, 200, "Transaction successfully processed"},
		{transaction.StatusFailure, 400, "Transaction failed"},
	}

	for _, tc := range testCases {
		t.Run("Admitted"+string(tc.status), func(t *testing.T) {
			repo := new(MockTransactionRepository)
			recorder := new(MockOutcomeRecorder)
			svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(tc.status), recorder, 0)

			var stored *transaction.Transaction
			repo.On("AddTransaction", ctx, mock.AnythingOfType("*transaction.Transaction")).
				Run(func(args mock.Arguments) { stored = args.Get(1).(*transaction.Transaction) }).
				Return(&transaction.Transaction{}, nil).Once()
			recorder.On("RecordOutcome", string(tc.status)).Once()

			result, err := svc.ProcessPayment(ctx, validRequest())
			require.NoError(t, err)

			require.NotNil(t, stored)
			assert.Equal(t, tc.status, stored.Status)
			assert.Equal(t, stored.ID, result.TransactionReference)
			assert.NotEqual(t, uuid.Nil, result.TransactionReference)
			assert.Equal(t, tc.expectedCode, result.StatusCode)
			assert.Equal(t, tc.expectedMsg, result.Message)

			repo.AssertExpectations(t)
			recorder.AssertExpectations(t)
		})
	}

	t.Run("WithRandomAssignor", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		recorder := new(MockOutcomeRecorder)
		svc := NewPaymentService(newTestLogger(), repo, transaction.NewWeightedAssignor(nil), recorder, 0)

		repo.On("AddTransaction", ctx, mock.Anything).Return(&transaction.Transaction{}, nil)
		recorder.On("RecordOutcome", mock.Anything)

		result, err := svc.ProcessPayment(ctx, validRequest())
		require.NoError(t, err)
		assert.Contains(t, []int{100, 200, 400}, result.StatusCode)
		assert.NotEqual(t, uuid.Nil, result.TransactionReference)
	})

	rejections := []struct {
		name        string
		mutate      func(r *PaymentRequest)
		expectedMsg string
	}{
		{"InvalidPayer", func(r *PaymentRequest) { r.Payer = "123" }, "Payer must be a numeric 10-digit account number."},
		{"InvalidPayee", func(r *PaymentRequest) { r.Payee = "abcdefghij" }, "Payee must be a numeric 10-digit account number."},
		{"ZeroAmount", func(r *PaymentRequest) { r.Amount = decimal.Zero }, "Amount must be greater than zero."},
		{"ShortCurrency", func(r *PaymentRequest) { r.Currency = "US" }, "Currency must be a 3-letter ISO code."},
	}

	for _, tc := range rejections {
		t.Run("Rejected"+tc.name, func(t *testing.T) {
			repo := new(MockTransactionRepository)
			recorder := new(MockOutcomeRecorder)
			svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), recorder, time.Hour)
			recorder.On("RecordOutcome", "REJECTED").Once()

			req := validRequest()
			tc.mutate(req)

			result, err := svc.ProcessPayment(ctx, req)
			require.NoError(t, err, "validation failures are results, not errors")
			assert.Equal(t, uuid.Nil, result.TransactionReference)
			assert.Equal(t, 400, result.StatusCode)
			assert.Equal(t, tc.expectedMsg, result.Message)

			repo.AssertNotCalled(t, "AddTransaction", mock.Anything, mock.Anything)
			recorder.AssertExpectations(t)
		})
	}

	t.Run("StorageFailure", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		recorder := new(MockOutcomeRecorder)
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), recorder, 0)

		storeErr := errors.New("connection refused")
		repo.On("AddTransaction", ctx, mock.Anything).Return(nil, storeErr).Once()

		result, err := svc.ProcessPayment(ctx, validRequest())
		assert.Nil(t, result)
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), "failed to store transaction")
		recorder.AssertNotCalled(t, "RecordOutcome", mock.Anything)
	})

	t.Run("SimulatedLatency", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		recorder := new(MockOutcomeRecorder)
		latency := 30 * time.Millisecond
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), recorder, latency)

		repo.On("AddTransaction", ctx, mock.Anything).Return(&transaction.Transaction{}, nil).Once()
		recorder.On("RecordOutcome", "SUCCESS").Once()

		start := time.Now()
		_, err := svc.ProcessPayment(ctx, validRequest())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), latency)
	})

	t.Run("CancelledDuringLatency", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		recorder := new(MockOutcomeRecorder)
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), recorder, time.Hour)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := svc.ProcessPayment(cancelled, validRequest())
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.Canceled)
		repo.AssertNotCalled(t, "AddTransaction", mock.Anything, mock.Anything)
	})
}

func TestPaymentServiceImpl_GetTransactionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), new(MockOutcomeRecorder), 0)
		txn := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPending, CreatedAt: time.Now().UTC()}
		repo.On("GetByReference", ctx, txn.ID).Return(txn, nil).Once()

		got, err := svc.GetTransactionStatus(ctx, txn.ID)
		require.NoError(t, err)
		assert.Same(t, txn, got)
	})

	t.Run("NeverStoredIsNotAnError", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), new(MockOutcomeRecorder), 0)
		id := uuid.New()
		repo.On("GetByReference", ctx, id).Return(nil, transaction.ErrTransactionNotFound{ID: id}).Once()

		got, err := svc.GetTransactionStatus(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewPaymentService(newTestLogger(), repo, fixedAssignor(transaction.StatusSuccess), new(MockOutcomeRecorder), 0)
		id := uuid.New()
		storeErr := errors.New("timeout")
		repo.On("GetByReference", ctx, id).Return(nil, storeErr).Once()

		got, err := svc.GetTransactionStatus(ctx, id)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, storeErr)
	})
}
