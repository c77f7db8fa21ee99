package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"authnet-cim/config"
	"authnet-cim/database"
	"authnet-cim/handlers"
	"authnet-cim/middleware"
	"authnet-cim/queue"
	"authnet-cim/services/auth"
	"authnet-cim/services/notification"
	"authnet-cim/services/payment"
	"authnet-cim/services/payment/authorizenet"
	"authnet-cim/worker"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func connectDatabase(cfg database.DatabaseConfig, logger *zap.Logger) *database.Connection {
	var db *database.Connection
	var err error

	for i := 0; i < 3; i++ {
		db, err = database.NewConnection(cfg, logger)
		if err == nil {
			return db
		}
		logger.Warn("Failed to connect to database", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	logger.Fatal("Could not connect to database", zap.Error(err))
	return nil
}

// relay forwards events drained from the queue to Kafka, or logs them when
// no brokers are configured.
func relay(producer sarama.SyncProducer, topic string, logger *zap.Logger) worker.Handler {
	var next notification.Notifier = notification.Log{Logger: logger}
	if producer != nil {
		next = notification.NewKafkaNotifier(producer, topic)
	}
	return func(ctx context.Context, event authorizenet.Event) error {
		return next.Notify(ctx, []authorizenet.Event{event})
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load(logger)

	client := authorizenet.NewClient(cfg.AuthNet, authorizenet.WithLogger(logger))
	opts := []payment.Option{payment.WithLogger(logger)}
	checks := map[string]handlers.Pinger{}

	var db *database.Connection
	if cfg.Database.Configured() {
		db = connectDatabase(cfg.Database, logger)
		opts = append(opts, payment.WithStore(db))
		checks["database"] = db
	} else {
		logger.Warn("Database not configured, gateway responses will not be stored")
	}

	var producer sarama.SyncProducer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = notification.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Fatal("Failed to create Kafka producer", zap.Error(err))
		}
	}

	notifiers := notification.Multi{notification.Log{Logger: logger}}

	var eventQueue *queue.Queue
	var eventWorker *worker.Worker
	if cfg.Redis.URL != "" {
		eventQueue, err = queue.NewQueue(cfg.Redis.URL, cfg.Redis.EventQueue, logger)
		if err != nil {
			logger.Fatal("Failed to create event queue", zap.Error(err))
		}
		notifiers = append(notifiers, notification.NewQueueNotifier(eventQueue))
		checks["redis"] = eventQueue

		concurrency := cfg.Redis.WorkerConcurrency
		if concurrency < 1 {
			concurrency = 1
		} else if concurrency > 8 {
			concurrency = 8
		}

		eventWorker = worker.NewWorker(eventQueue, logger)
		handler := relay(producer, cfg.Kafka.Topic, logger)
		for _, kind := range []authorizenet.EventKind{
			authorizenet.EventCustomerCreated,
			authorizenet.EventCustomerFlagged,
			authorizenet.EventPaymentSuccessful,
			authorizenet.EventPaymentFlagged,
		} {
			eventWorker.Handle(kind, handler)
		}
		eventWorker.Start(concurrency)
		logger.Info("Event worker started", zap.Int("concurrency", concurrency))
	} else if producer != nil {
		notifiers = append(notifiers, notification.NewKafkaNotifier(producer, cfg.Kafka.Topic))
	}
	opts = append(opts, payment.WithNotifier(notifiers))

	service := payment.NewPaymentService(client, opts...)

	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	handlers.RegisterRoutes(router,
		handlers.NewCIMHandler(service, logger),
		handlers.NewHealthHandler(checks),
		middleware.AuthMiddleware(jwtService, logger),
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if eventWorker != nil {
		logger.Info("Stopping event worker")
		eventWorker.Stop()
	}
	if eventQueue != nil {
		eventQueue.Close()
	}
	if producer != nil {
		producer.Close()
	}
	if db != nil {
		db.Close()
	}

	logger.Info("Server exited properly")
}
