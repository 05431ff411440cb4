package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Enqueuer pushes task envelopes onto the broker queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload []byte) error
}

// RedisEnqueuer dispatches tasks onto a Redis list consumed by the
// worker fleet with BRPOP.
type RedisEnqueuer struct {
	client   redis.UniversalClient
	queueKey string
}

// NewRedisEnqueuer creates an enqueuer writing to the given list key.
func NewRedisEnqueuer(client redis.UniversalClient, queueKey string) *RedisEnqueuer {
	return &RedisEnqueuer{client: client, queueKey: queueKey}
}

// Enqueue wraps the payload in an envelope and pushes it onto the
// queue.
func (e *RedisEnqueuer) Enqueue(ctx context.Context, taskType string, payload []byte) error {
	envelope := NewEnvelope(taskType, payload)
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal task envelope: %w", err)
	}
	if err := e.client.LPush(ctx, e.queueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", taskType, err)
	}
	return nil
}

var _ Enqueuer = (*RedisEnqueuer)(nil)
