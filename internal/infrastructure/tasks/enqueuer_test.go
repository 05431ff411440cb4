package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnqueuer(t *testing.T) (*RedisEnqueuer, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisEnqueuer(client, "platform:tasks"), srv
}

func TestRedisEnqueuer_Enqueue(t *testing.T) {
	enqueuer, srv := newTestEnqueuer(t)

	payload := []byte(`{"subscription_id":"abc"}`)
	err := enqueuer.Enqueue(context.Background(), TaskSubscriptionCreated, payload)
	require.NoError(t, err)

	raw, err := srv.Lpop("platform:tasks")
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	assert.Equal(t, TaskSubscriptionCreated, envelope.Type)
	assert.JSONEq(t, string(payload), string(envelope.Payload))
	assert.NotZero(t, envelope.ID)
	assert.False(t, envelope.EnqueuedAt.IsZero())
}

func TestRedisEnqueuer_EnqueueOrder(t *testing.T) {
	enqueuer, srv := newTestEnqueuer(t)

	require.NoError(t, enqueuer.Enqueue(context.Background(), TaskUserSignedUp, []byte(`{"n":1}`)))
	require.NoError(t, enqueuer.Enqueue(context.Background(), TaskUserSignedUp, []byte(`{"n":2}`)))

	// Workers consume with BRPOP, so the first enqueued task comes
	// off the right end first.
	raw, err := srv.RPop("platform:tasks")
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	assert.JSONEq(t, `{"n":1}`, string(envelope.Payload))
}
