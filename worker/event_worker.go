package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"authnet-cim/queue"
	"authnet-cim/services/payment/authorizenet"
)

// Source is the part of queue.Queue the worker consumes.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Message, error)
	Complete(ctx context.Context, msg *queue.Message) error
	Fail(ctx context.Context, msg *queue.Message, cause error) error
	ProcessDelayed(ctx context.Context) (int, error)
}

// Handler processes one event. A returned error fails the message.
type Handler func(ctx context.Context, event authorizenet.Event) error

// Worker consumes queued CIM events and dispatches them by kind.
type Worker struct {
	source   Source
	handlers map[authorizenet.EventKind]Handler
	logger   *zap.Logger

	// PollTimeout bounds each blocking dequeue; DelayedInterval is how
	// often due retries are moved back onto the queue.
	PollTimeout     time.Duration
	DelayedInterval time.Duration

	shutdown  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewWorker(source Source, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		source:          source,
		handlers:        make(map[authorizenet.EventKind]Handler),
		logger:          logger,
		PollTimeout:     5 * time.Second,
		DelayedInterval: 10 * time.Second,
	}
}

// Handle registers h for kind, replacing any earlier handler.
func (w *Worker) Handle(kind authorizenet.EventKind, h Handler) {
	w.handlers[kind] = h
}

// Start launches concurrency consumers and the delayed-message mover.
// Handlers must be registered before Start.
func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}

	w.shutdown = make(chan struct{})
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processMessages(i)
	}
	w.wg.Add(1)
	go w.moveDelayed()

	w.logger.Info("Started event worker", zap.Int("concurrency", concurrency))
}

// Stop signals the consumers and waits for in-flight messages.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.logger.Info("Stopping event worker")
	close(w.shutdown)
	w.isRunning = false
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Worker) processMessages(workerID int) {
	defer w.wg.Done()
	logger := w.logger.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.shutdown:
			logger.Debug("Worker shutting down")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.PollTimeout+5*time.Second)
		msg, err := w.source.Dequeue(ctx, w.PollTimeout)
		cancel()

		if err != nil {
			logger.Error("Error dequeuing message", zap.Error(err))
			w.pause(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		w.process(logger, msg)
	}
}

func (w *Worker) process(logger *zap.Logger, msg *queue.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger = logger.With(zap.String("id", msg.ID), zap.String("kind", msg.Kind))

	if err := w.dispatch(ctx, msg); err != nil {
		logger.Warn("Error processing message", zap.Error(err))
		if failErr := w.source.Fail(ctx, msg, err); failErr != nil {
			logger.Error("Error marking message as failed", zap.Error(failErr))
		}
		return
	}

	if err := w.source.Complete(ctx, msg); err != nil {
		logger.Error("Error marking message as complete", zap.Error(err))
	}
}

func (w *Worker) dispatch(ctx context.Context, msg *queue.Message) error {
	handler, ok := w.handlers[authorizenet.EventKind(msg.Kind)]
	if !ok {
		return fmt.Errorf("no handler for event kind %q", msg.Kind)
	}

	var event authorizenet.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	return handler(ctx, event)
}

func (w *Worker) moveDelayed() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.DelayedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			moved, err := w.source.ProcessDelayed(ctx)
			cancel()
			if err != nil {
				w.logger.Error("Error processing delayed messages", zap.Error(err))
			} else if moved > 0 {
				w.logger.Debug("Moved delayed messages", zap.Int("count", moved))
			}
		}
	}
}

func (w *Worker) pause(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}
