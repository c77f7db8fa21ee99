package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueueWithClient(client, "cim:events", nil), mr
}

func TestPublishDequeueComplete(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	published, err := q.Publish(ctx, "customer_created", map[string]string{"profile_id": "12345"})
	require.NoError(t, err)
	require.NotEmpty(t, published.ID)

	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, published.ID, msg.ID)
	assert.Equal(t, "customer_created", msg.Kind)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "12345", payload["profile_id"])

	processing, err := mr.List("cim:events:processing")
	require.NoError(t, err)
	assert.Len(t, processing, 1)

	require.NoError(t, q.Complete(ctx, msg))
	assert.False(t, mr.Exists("cim:events:processing"))
}

func TestDequeueEmpty(t *testing.T) {
	q, _ := newTestQueue(t)

	msg, err := q.Dequeue(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestDequeueMalformed(t *testing.T) {
	q, mr := newTestQueue(t)
	_, err := mr.Push("cim:events", "{not json")
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background(), time.Second)
	require.Error(t, err)

	failed, err := mr.List("cim:events:failed")
	require.NoError(t, err)
	assert.Equal(t, []string{"{not json"}, failed)
}

func TestFailRetriesThenParks(t *testing.T) {
	q, mr := newTestQueue(t)
	q.MaxRetries = 1
	q.RetryDelay = 0
	ctx := context.Background()

	_, err := q.Publish(ctx, "payment_flagged", map[string]string{})
	require.NoError(t, err)

	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, msg, errors.New("handler down")))

	assert.False(t, mr.Exists("cim:events:processing"))
	moved, err := q.ProcessDelayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	msg, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, 1, msg.RetryCount)
	assert.Equal(t, "handler down", msg.LastError)

	require.NoError(t, q.Fail(ctx, msg, errors.New("still down")))

	failed, err := q.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].RetryCount)
	assert.Equal(t, "still down", failed[0].LastError)
}

func TestRequeue(t *testing.T) {
	q, mr := newTestQueue(t)
	q.MaxRetries = 0
	ctx := context.Background()

	published, err := q.Publish(ctx, "customer_flagged", map[string]string{})
	require.NoError(t, err)
	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, msg, errors.New("boom")))

	require.NoError(t, q.Requeue(ctx, published.ID))
	assert.False(t, mr.Exists("cim:events:failed"))

	msg, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, published.ID, msg.ID)
	assert.Zero(t, msg.RetryCount)

	assert.Error(t, q.Requeue(ctx, "unknown"))
}

func TestRetryWaitsForDelay(t *testing.T) {
	q, mr := newTestQueue(t)
	q.RetryDelay = time.Hour
	ctx := context.Background()

	_, err := q.Publish(ctx, "customer_created", map[string]string{})
	require.NoError(t, err)
	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, msg, errors.New("handler down")))

	moved, err := q.ProcessDelayed(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.True(t, mr.Exists("cim:events:delayed"))
}
