package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/payment-gateway/internal/platform/metrics"
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	repo     transaction.Repository
	assignor transaction.Assignor
	recorder OutcomeRecorder
	latency  time.Duration
	logger   *slog.Logger
}

// NewPaymentService creates a payment service. latency delays every admitted
// transaction before it is stored; zero disables the delay.
func NewPaymentService(logger *slog.Logger, repo transaction.Repository, assignor transaction.Assignor, recorder OutcomeRecorder, latency time.Duration) PaymentService {
	return &PaymentServiceImpl{
		repo:     repo,
		assignor: assignor,
		recorder: recorder,
		latency:  latency,
		logger:   logger,
	}
}

func (s *PaymentServiceImpl) ProcessPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	logger := s.logger.With("correlation_id", shared.CorrelationIDFromContext(ctx))

	txn, err := transaction.Create(req.Payer, req.Payee, req.Amount, req.Currency, req.PaymentReference)
	if err != nil {
		var validationErr transaction.ValidationError
		if errors.As(err, &validationErr) {
			logger.Warn("Payment rejected", "field", validationErr.Field, "reason", validationErr.Message)
			s.recorder.RecordOutcome(metrics.OutcomeRejected)
			return &PaymentResult{
				TransactionReference: uuid.Nil,
				StatusCode:           http.StatusBadRequest,
				Message:              validationErr.Message,
			}, nil
		}
		logger.Error("Failed to create transaction", "error", err)
		return nil, err
	}

	status := s.assignor.Assign(txn)
	if err := txn.AssignStatus(status); err != nil {
		return nil, fmt.Errorf("failed to assign status: %w", err)
	}

	if err := s.simulateProcessing(ctx); err != nil {
		logger.Warn("Payment abandoned before storage", "transaction_id", txn.ID.String(), "error", err)
		return nil, err
	}

	if _, err := s.repo.AddTransaction(ctx, txn); err != nil {
		logger.Error("Failed to store transaction", "transaction_id", txn.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	s.recorder.RecordOutcome(string(status))
	outcome := transaction.OutcomeFor(status)

	logger.Info("Payment processed",
		"transaction_id", txn.ID.String(),
		"status", string(status),
		"status_code", outcome.Code,
	)

	return &PaymentResult{
		TransactionReference: txn.ID,
		StatusCode:           outcome.Code,
		Message:              outcome.Message,
	}, nil
}

// simulateProcessing stands in for the settlement network round trip
func (s *PaymentServiceImpl) simulateProcessing(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetTransactionStatus returns nil, nil when the transaction does not exist
func (s *PaymentServiceImpl) GetTransactionStatus(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.repo.GetByReference(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.Info("Transaction not found", "transaction_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return txn, nil
}
