// Package redis caches transaction status lookups in front of the primary store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/payment-gateway/internal/platform/persistence"
)

const keyPrefix = "payment:transaction:"

// CachedTransactionRepository decorates a transaction.Repository with a
// write-through Redis cache. Cache faults are logged and never surface to callers.
type CachedTransactionRepository struct {
	next   transaction.Repository
	cache  persistence.RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ transaction.Repository = (*CachedTransactionRepository)(nil)

func NewCachedTransactionRepository(logger *slog.Logger, next transaction.Repository, cache persistence.RedisClient, ttl time.Duration) *CachedTransactionRepository {
	return &CachedTransactionRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// AddTransaction stores txn and, on success, caches it
func (r *CachedTransactionRepository) AddTransaction(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, error) {
	stored, err := r.next.AddTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}
	r.store(ctx, stored)
	return stored, nil
}

// GetByReference serves from cache when possible and fills it on a miss.
// Not-found results are never cached.
func (r *CachedTransactionRepository) GetByReference(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	key := cacheKey(id)

	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var txn transaction.Transaction
		if jsonErr := json.Unmarshal([]byte(raw), &txn); jsonErr == nil {
			return &txn, nil
		}
		r.logger.Warn("Discarding undecodable cache entry", "key", key)
		if delErr := r.cache.Del(ctx, key); delErr != nil {
			r.logger.Warn("Failed to delete cache entry", "key", key, "error", delErr)
		}
	case !errors.Is(err, persistence.ErrKeyNotFound):
		r.logger.Warn("Cache lookup failed, falling back to store", "key", key, "error", err)
	}

	txn, err := r.next.GetByReference(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, txn)
	return txn, nil
}

func (r *CachedTransactionRepository) store(ctx context.Context, txn *transaction.Transaction) {
	payload, err := json.Marshal(txn)
	if err != nil {
		r.logger.Warn("Failed to encode transaction for cache", "transaction_id", txn.ID.String(), "error", err)
		return
	}
	if err := r.cache.Set(ctx, cacheKey(txn.ID), payload, r.ttl); err != nil {
		r.logger.Warn("Failed to cache transaction", "transaction_id", txn.ID.String(), "error", err)
	}
}
