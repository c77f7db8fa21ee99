package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 15 * time.Second
)

// Message is one queued notification. Payload is the JSON encoded event.
type Message struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	LastError  string          `json:"last_error,omitempty"`

	// raw is the exact list entry, needed to remove it from the
	// processing list.
	raw string
}

// Queue is a Redis list based queue with processing, delayed and failed
// side lists.
type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	delayed    string
	failed     string
	logger     *zap.Logger

	// MaxRetries is how many times Fail reschedules a message before
	// parking it on the failed list.
	MaxRetries int
	// RetryDelay is the first backoff step; it doubles on every retry.
	RetryDelay time.Duration
}

func NewQueue(redisURL, queueName string, logger *zap.Logger) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewQueueWithClient(client, queueName, logger), nil
}

func NewQueueWithClient(client *redis.Client, queueName string, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		delayed:    queueName + ":delayed",
		failed:     queueName + ":failed",
		logger:     logger,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

func newMessage(kind string, payload interface{}) (*Message, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := &Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return msg, encoded, nil
}

func (q *Queue) Publish(ctx context.Context, kind string, payload interface{}) (*Message, error) {
	msg, encoded, err := newMessage(kind, payload)
	if err != nil {
		return nil, err
	}

	if err := q.client.RPush(ctx, q.queueName, encoded).Err(); err != nil {
		return nil, fmt.Errorf("failed to push message to queue: %w", err)
	}

	q.logger.Debug("Enqueued message", zap.String("id", msg.ID), zap.String("kind", kind))
	return msg, nil
}

// Dequeue blocks up to timeout. It returns nil, nil when nothing arrived.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Message, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		// Unreadable entries go straight to the failed list.
		if pushErr := q.client.RPush(ctx, q.failed, result[1]).Err(); pushErr != nil {
			q.logger.Warn("Failed to park malformed message", zap.Error(pushErr))
		}
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	msg.raw = result[1]

	if err := q.client.RPush(ctx, q.processing, msg.raw).Err(); err != nil {
		q.logger.Warn("Failed to move message to processing list", zap.String("id", msg.ID), zap.Error(err))
	}

	return &msg, nil
}

func (q *Queue) Complete(ctx context.Context, msg *Message) error {
	if err := q.client.LRem(ctx, q.processing, 1, msg.raw).Err(); err != nil {
		return fmt.Errorf("failed to remove message from processing list: %w", err)
	}

	q.logger.Debug("Completed message", zap.String("id", msg.ID), zap.String("kind", msg.Kind))
	return nil
}

// Fail reschedules msg with exponential backoff, or parks it on the failed
// list once MaxRetries is exceeded.
func (q *Queue) Fail(ctx context.Context, msg *Message, cause error) error {
	if err := q.client.LRem(ctx, q.processing, 1, msg.raw).Err(); err != nil {
		q.logger.Warn("Failed to remove message from processing list", zap.String("id", msg.ID), zap.Error(err))
	}

	msg.RetryCount++
	msg.LastError = cause.Error()

	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if msg.RetryCount <= q.MaxRetries {
		delay := q.RetryDelay * time.Duration(1<<(msg.RetryCount-1))
		retryAt := time.Now().Add(delay)

		err := q.client.ZAdd(ctx, q.delayed, &redis.Z{
			Score:  float64(retryAt.Unix()),
			Member: encoded,
		}).Err()
		if err == nil {
			q.logger.Info("Message scheduled for retry",
				zap.String("id", msg.ID),
				zap.String("kind", msg.Kind),
				zap.Int("retry", msg.RetryCount),
				zap.Int("max_retries", q.MaxRetries),
				zap.Duration("delay", delay),
			)
			return nil
		}
		q.logger.Warn("Failed to schedule retry, parking message", zap.String("id", msg.ID), zap.Error(err))
	}

	if err := q.client.RPush(ctx, q.failed, encoded).Err(); err != nil {
		return fmt.Errorf("failed to push message to failed list: %w", err)
	}

	q.logger.Warn("Message moved to failed list",
		zap.String("id", msg.ID),
		zap.String("kind", msg.Kind),
		zap.Int("retries", msg.RetryCount),
		zap.String("last_error", msg.LastError),
	)
	return nil
}

// ProcessDelayed moves due delayed messages back onto the main list and
// returns how many were moved.
func (q *Queue) ProcessDelayed(ctx context.Context) (int, error) {
	now := float64(time.Now().Unix())

	due, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed messages: %w", err)
	}

	moved := 0
	for _, entry := range due {
		if err := q.client.RPush(ctx, q.queueName, entry).Err(); err != nil {
			q.logger.Warn("Failed to move delayed message to main list", zap.Error(err))
			continue
		}
		if err := q.client.ZRem(ctx, q.delayed, entry).Err(); err != nil {
			q.logger.Warn("Failed to remove message from delayed set", zap.Error(err))
			continue
		}
		moved++
	}

	return moved, nil
}

// Failed lists the parked messages.
func (q *Queue) Failed(ctx context.Context) ([]Message, error) {
	entries, err := q.client.LRange(ctx, q.failed, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list failed messages: %w", err)
	}

	messages := make([]Message, 0, len(entries))
	for _, entry := range entries {
		var msg Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			q.logger.Warn("Skipping malformed failed entry", zap.Error(err))
			continue
		}
		msg.raw = entry
		messages = append(messages, msg)
	}
	return messages, nil
}

// Requeue moves a parked message back onto the main list with its retry
// count reset.
func (q *Queue) Requeue(ctx context.Context, id string) error {
	messages, err := q.Failed(ctx)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if msg.ID != id {
			continue
		}
		if err := q.client.LRem(ctx, q.failed, 1, msg.raw).Err(); err != nil {
			return fmt.Errorf("failed to remove message from failed list: %w", err)
		}

		msg.RetryCount = 0
		msg.LastError = ""
		encoded, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if err := q.client.RPush(ctx, q.queueName, encoded).Err(); err != nil {
			return fmt.Errorf("failed to push message to main list: %w", err)
		}

		q.logger.Info("Requeued failed message", zap.String("id", id), zap.String("kind", msg.Kind))
		return nil
	}

	return fmt.Errorf("message %s not found in failed list", id)
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
