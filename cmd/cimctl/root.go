package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"authnet-cim/config"
	"authnet-cim/database"
	"authnet-cim/queue"
	"authnet-cim/services/notification"
	"authnet-cim/services/payment"
	"authnet-cim/services/payment/authorizenet"
)

// app carries what the subcommands share. Connections are opened lazily so
// commands that never reach Authorize.net, MySQL or Redis do not need them.
type app struct {
	verbose bool
	sandbox bool
	live    bool

	logger  *zap.Logger
	cfg     *config.Config
	gateway payment.Gateway
	db      *database.Connection
	queue   *queue.Queue
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cimctl",
		Short:         "Manage Authorize.net customer profiles from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests and configuration")
	rootCmd.PersistentFlags().BoolVar(&a.sandbox, "sandbox", false, "Force the sandbox endpoint")
	rootCmd.PersistentFlags().BoolVar(&a.live, "live", false, "Force the production endpoint")
	rootCmd.MarkFlagsMutuallyExclusive("sandbox", "live")

	rootCmd.AddCommand(addProfileCmd(a))
	rootCmd.AddCommand(getProfileCmd(a))
	rootCmd.AddCommand(createPaymentProfileCmd(a))
	rootCmd.AddCommand(updatePaymentProfileCmd(a))
	rootCmd.AddCommand(deletePaymentProfileCmd(a))
	rootCmd.AddCommand(transactionCmd(a))
	rootCmd.AddCommand(tokenCmd(a))
	rootCmd.AddCommand(customerCmd(a))
	rootCmd.AddCommand(responseCmd(a))
	rootCmd.AddCommand(eventsCmd(a))

	return rootCmd
}

func (a *app) init() error {
	if a.logger == nil {
		a.logger = zap.NewNop()
		if a.verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			a.logger = logger
		}
	}
	if a.cfg == nil {
		a.cfg = config.Load(a.logger)
	}
	switch {
	case a.sandbox:
		a.cfg.AuthNet.Debug = true
	case a.live:
		a.cfg.AuthNet.Debug = false
	}
	return nil
}

// client returns the payment service, storing responses and queueing events
// the same way the server does when the database and Redis are configured.
func (a *app) client() (payment.Gateway, error) {
	if a.gateway != nil {
		return a.gateway, nil
	}

	opts := []payment.Option{payment.WithLogger(a.logger)}
	if a.cfg.Database.Configured() {
		db, err := a.database()
		if err != nil {
			return nil, err
		}
		opts = append(opts, payment.WithStore(db))
	}
	if a.cfg.Redis.URL != "" {
		q, err := a.eventQueue()
		if err != nil {
			return nil, err
		}
		opts = append(opts, payment.WithNotifier(notification.NewQueueNotifier(q)))
	}

	client := authorizenet.NewClient(a.cfg.AuthNet, authorizenet.WithLogger(a.logger))
	a.gateway = payment.NewPaymentService(client, opts...)
	return a.gateway, nil
}

func (a *app) database() (*database.Connection, error) {
	if a.db != nil {
		return a.db, nil
	}
	if !a.cfg.Database.Configured() {
		return nil, errors.New("database is not configured (DB_HOST, DB_NAME)")
	}
	db, err := database.NewConnection(a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) eventQueue() (*queue.Queue, error) {
	if a.queue != nil {
		return a.queue, nil
	}
	if a.cfg.Redis.URL == "" {
		return nil, errors.New("REDIS_URL is not set")
	}
	q, err := queue.NewQueue(a.cfg.Redis.URL, a.cfg.Redis.EventQueue, a.logger)
	if err != nil {
		return nil, err
	}
	a.queue = q
	return q, nil
}

func (a *app) close() {
	if a.queue != nil {
		a.queue.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
