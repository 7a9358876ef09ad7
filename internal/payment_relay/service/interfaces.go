package service

import (
	"context"

	"github.com/payment-gateway/internal/domain/shared"
)

// ArchiveService records consumed payment events in the history store.
// Archiving the same event twice is not an error.
type ArchiveService interface {
	ArchiveEvent(ctx context.Context, event *shared.PaymentEvent) error
}
