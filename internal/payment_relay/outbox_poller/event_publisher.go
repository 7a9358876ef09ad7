package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/payment-gateway/internal/domain/outbox"
	"github.com/payment-gateway/internal/domain/shared"
	"github.com/payment-gateway/internal/platform/messaging/producers"
)

// ErrUndecodablePayload marks outbox rows whose payload is not a payment event.
// Such rows are failed permanently and never retried.
var ErrUndecodablePayload = errors.New("outbox payload is not a payment event")

// ErrMarkProcessedFailed reports an event that reached Kafka while its outbox
// row stayed PENDING. The row is republished on a later pass and consumers
// archive idempotently, so it does not count as a failed publish attempt.
var ErrMarkProcessedFailed = errors.New("event published but outbox row not marked PROCESSED")

// EventPublisher relays one outbox message to the event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher implements EventPublisher
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent writes the message payload to Kafka keyed by transaction id and
// marks the row PROCESSED
func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetPaymentEvent()
	if err != nil {
		p.logger.Error("Failed to decode payment event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		message.MarkAsFailed()
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, message.Status); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr,
			)
		}
		return fmt.Errorf("outbox %d: %w: %w", message.ID, ErrUndecodablePayload, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.TransactionID.String(), message.Payload); err != nil {
		return fmt.Errorf("failed to publish payment event %s: %w", event.TransactionID, err)
	}

	message.MarkAsProcessed()
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event %s, outbox %d: %w: %w", event.TransactionID, message.ID, ErrMarkProcessedFailed, err)
	}

	logger.Info("Payment event published",
		"outbox_id", message.ID,
		"transaction_id", message.TransactionID,
		"status", event.Status,
	)
	return nil
}
