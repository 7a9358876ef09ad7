// Package mongo archives the payment event stream into MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/payment-gateway/internal/domain/history"
)

// HistoryRepository implements history.Repository for MongoDB. The collection
// carries a unique index on transaction_id.
type HistoryRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

var _ history.Repository = (*HistoryRepository)(nil)

func NewHistoryRepository(logger *slog.Logger, collection *mongo.Collection) *HistoryRepository {
	return &HistoryRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts record. Returns ErrDuplicateRecord if the transaction is already archived.
func (r *HistoryRepository) Create(ctx context.Context, record *history.Record) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return history.ErrDuplicateRecord{TransactionID: record.TransactionID}
		}
		r.logger.Error("Failed to create history record",
			"transaction_id", record.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create history record: %w", err)
	}

	return nil
}

// GetByTransactionID returns ErrRecordNotFound if the transaction was never archived
func (r *HistoryRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*history.Record, error) {
	var record history.Record
	err := r.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, history.ErrRecordNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get history record",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}

	return &record, nil
}
