package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"authnet-cim/queue"
	"authnet-cim/services/payment/authorizenet"
)

// Notifier delivers the events produced by a CIM operation.
type Notifier interface {
	Notify(ctx context.Context, events []authorizenet.Event) error
}

// Publisher is the part of queue.Queue used by QueueNotifier.
type Publisher interface {
	Publish(ctx context.Context, kind string, payload interface{}) (*queue.Message, error)
}

// QueueNotifier pushes each event onto the Redis event queue.
type QueueNotifier struct {
	queue Publisher
}

func NewQueueNotifier(q Publisher) *QueueNotifier {
	return &QueueNotifier{queue: q}
}

func (n *QueueNotifier) Notify(ctx context.Context, events []authorizenet.Event) error {
	for _, event := range events {
		if _, err := n.queue.Publish(ctx, string(event.Kind), event); err != nil {
			return fmt.Errorf("failed to queue %s event: %w", event.Kind, err)
		}
	}
	return nil
}

// KafkaNotifier writes each event to a topic, keyed by profile so events of
// one customer stay ordered.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaNotifier(producer sarama.SyncProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// NewKafkaProducer creates a synchronous producer that waits for all
// in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

func (n *KafkaNotifier) Notify(ctx context.Context, events []authorizenet.Event) error {
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", event.Kind, err)
		}

		msg := &sarama.ProducerMessage{
			Topic: n.topic,
			Key:   sarama.StringEncoder(event.Key()),
			Value: sarama.ByteEncoder(value),
			Headers: []sarama.RecordHeader{
				{Key: []byte("kind"), Value: []byte(event.Kind)},
			},
		}
		if _, _, err := n.producer.SendMessage(msg); err != nil {
			return fmt.Errorf("failed to send %s event: %w", event.Kind, err)
		}
	}
	return nil
}

// Multi fans events out to every notifier. All notifiers are tried; their
// errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, events []authorizenet.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log only writes events to the logger.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, events []authorizenet.Event) error {
	for _, event := range events {
		l.Logger.Info("CIM event",
			zap.String("kind", string(event.Kind)),
			zap.String("customer_id", event.CustomerID),
			zap.String("profile_id", event.ProfileID),
			zap.Strings("payment_profile_ids", event.PaymentProfileIDs),
		)
	}
	return nil
}
