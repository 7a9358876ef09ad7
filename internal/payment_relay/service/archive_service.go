package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/payment-gateway/internal/domain/history"
	"github.com/payment-gateway/internal/domain/shared"
)

type ArchiveServiceImpl struct {
	historyRepo history.Repository
	logger      *slog.Logger
}

func NewArchiveService(historyRepo history.Repository, logger *slog.Logger) ArchiveService {
	return &ArchiveServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// ArchiveEvent stores event unless a record for its transaction already exists.
// The unique index on transaction_id settles races between redeliveries.
func (s *ArchiveServiceImpl) ArchiveEvent(ctx context.Context, event *shared.PaymentEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	existing, err := s.historyRepo.GetByTransactionID(ctx, event.TransactionID)
	if err != nil && !errors.Is(err, history.ErrRecordNotFound{}) {
		logger.Error("Failed to check existing history record", "transaction_id", event.TransactionID, "error", err)
		return fmt.Errorf("failed to check history record %s: %w", event.TransactionID, err)
	}
	if existing != nil {
		logger.Info("Payment event already archived", "transaction_id", event.TransactionID, "status", existing.Status)
		return nil
	}

	if err := s.historyRepo.Create(ctx, history.NewRecord(event)); err != nil {
		if errors.Is(err, history.ErrDuplicateRecord{}) {
			logger.Info("Payment event archived concurrently", "transaction_id", event.TransactionID)
			return nil
		}
		logger.Error("Failed to archive payment event", "transaction_id", event.TransactionID, "error", err)
		return fmt.Errorf("failed to archive payment event %s: %w", event.TransactionID, err)
	}

	logger.Info("Payment event archived",
		"transaction_id", event.TransactionID,
		"status", event.Status,
	)
	return nil
}
