package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RelayConfig holds configuration for the outbox relay.
type RelayConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultRelayConfig returns sensible relay defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Relay drains the transactional outbox and pushes entries onto the
// broker queue. Entries that fail to dispatch are retried with
// exponential backoff and dead-lettered after exhausting retries.
type Relay struct {
	repo     shared.OutboxRepository
	enqueuer Enqueuer
	config   RelayConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelay creates an outbox relay.
func NewRelay(repo shared.OutboxRepository, enqueuer Enqueuer, config RelayConfig, logger *zap.Logger) *Relay {
	return &Relay{
		repo:     repo,
		enqueuer: enqueuer,
		config:   config,
		logger:   logger,
	}
}

// Start launches the relay loops.
func (r *Relay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.relayLoop(ctx)

	if r.config.CleanupEnabled {
		r.wg.Add(1)
		go r.cleanupLoop(ctx)
	}

	r.logger.Info("outbox relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)
	return nil
}

// Stop waits for the relay loops to drain.
func (r *Relay) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) relayLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.relayBatch(ctx)
		}
	}
}

func (r *Relay) relayBatch(ctx context.Context) {
	pending, err := r.repo.FindPending(ctx, r.config.BatchSize)
	if err != nil {
		r.logger.Error("failed to find pending tasks", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		r.relayEntries(ctx, pending)
	}

	retryable, err := r.repo.FindRetryable(ctx, time.Now(), r.config.BatchSize)
	if err != nil {
		r.logger.Error("failed to find retryable tasks", zap.Error(err))
		return
	}
	if len(retryable) > 0 {
		r.relayEntries(ctx, retryable)
	}
}

func (r *Relay) relayEntries(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := r.repo.MarkProcessing(ctx, ids)
	if err != nil {
		r.logger.Error("failed to claim outbox entries", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		r.relayEntry(ctx, entry)
	}
}

func (r *Relay) relayEntry(ctx context.Context, entry *shared.OutboxEntry) {
	if err := r.enqueuer.Enqueue(ctx, entry.TaskType, entry.Payload); err != nil {
		r.logger.Error("failed to dispatch task",
			zap.String("task_id", entry.ID.String()),
			zap.String("task_type", entry.TaskType),
			zap.Error(err),
		)
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			r.logger.Warn("task moved to dead letter queue",
				zap.String("task_id", entry.ID.String()),
				zap.String("task_type", entry.TaskType),
				zap.String("aggregate_id", entry.AggregateID.String()),
				zap.Int("retry_count", entry.RetryCount),
				zap.String("last_error", entry.LastError),
			)
		}
		if updateErr := r.repo.Update(ctx, entry); updateErr != nil {
			r.logger.Error("failed to update outbox entry", zap.Error(updateErr))
		}
		return
	}

	entry.MarkSent()
	if err := r.repo.Update(ctx, entry); err != nil {
		r.logger.Error("failed to mark task as sent",
			zap.String("task_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("task dispatched",
		zap.String("task_id", entry.ID.String()),
		zap.String("task_type", entry.TaskType),
	)
}

func (r *Relay) cleanupLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup(ctx)
		}
	}
}

func (r *Relay) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-r.config.CleanupRetention)
	deleted, err := r.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.logger.Error("failed to clean up dispatched tasks", zap.Error(err))
		return
	}
	if deleted > 0 {
		r.logger.Info("cleaned up dispatched tasks",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
