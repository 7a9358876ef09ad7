package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/payment_relay/service"
	"github.com/payment-gateway/internal/platform/messaging/producers"
)

// PaymentEventHandler handles payment events consumed from Kafka
type PaymentEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewPaymentEventHandler creates a new handler. A nil producer disables dead-lettering.
func NewPaymentEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *PaymentEventHandler {
	return &PaymentEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage archives one event. Messages that cannot be decoded are moved
// to the DLQ and acknowledged; if the DLQ write fails the error is returned so
// the message is retried.
func (h *PaymentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal payment event", err)
	}
	if event.TransactionID == uuid.Nil {
		return h.deadLetter(ctx, key, value, "Payment event has no transaction id", nil)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received payment event",
		"transaction_id", event.TransactionID.String(),
		"status", event.Status,
	)

	if err := h.archiveService.ArchiveEvent(ctx, &event); err != nil {
		logger.Error("Failed to archive payment event",
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving payment event %s failed: %w", event.TransactionID.String(), err)
	}

	return nil
}

func (h *PaymentEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	dlqReason := reason
	if cause != nil {
		dlqReason = fmt.Sprintf("%s: %s", reason, cause.Error())
	}
	h.logger.Error(reason,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer == nil {
		return fmt.Errorf("unprocessable message %q and no DLQ configured: %s", string(key), dlqReason)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to dead-letter message %q: %w", string(key), dlqErr)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
	return nil
}
