package components

import (
	"log/slog"

	"github.com/payment-gateway/internal/config"
	"github.com/payment-gateway/internal/domain/history"
	"github.com/payment-gateway/internal/payment_relay/service"
)

// CreateArchiveService wires the archive service behind a worker pool of
// cfg.WorkerPool.Size workers. The returned shutdown releases the pool; it is a
// no-op when the service runs without one.
func CreateArchiveService(
	historyRepo history.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.ArchiveService, func()) {
	baseService := service.NewArchiveService(historyRepo, logger.With("component", "archive_service"))

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool size is not positive, archiving without a pool", "pool_size", cfg.WorkerPool.Size)
		return baseService, func() {}
	}

	workerPoolService, err := service.NewWorkerPoolArchiveService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService, func() {}
	}

	logger.Info("Created worker pool archive service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, workerPoolService.Shutdown
}
