package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"authnet-cim/database"
	"authnet-cim/services/auth"
)

func tokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [client-id]",
		Short: "Mint an access token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.NewJWTService(a.cfg.JWT.Secret, a.cfg.JWT.Issuer).
				GenerateToken(args[0], auth.TokenTypeAccess, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), token)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", auth.AccessTokenDuration, "Token lifetime")
	return cmd
}

func customerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "customer [customer-id]",
		Short: "Show the profile IDs stored for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			profile, err := db.GetCustomerProfile(context.Background(), args[0])
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no profile stored for customer %s", args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func responseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "response [response-id]",
		Short: "Show a stored gateway response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			resp, err := db.GetCIMResponse(context.Background(), args[0])
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no response stored with id %s", args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func eventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect and replay parked events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "failed",
		Short: "List events that exhausted their retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.eventQueue()
			if err != nil {
				return err
			}
			failed, err := q.Failed(context.Background())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), failed)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "requeue [message-id]...",
		Short: "Move parked events back onto the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.eventQueue()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := q.Requeue(context.Background(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "requeued %s\n", id)
			}
			return nil
		},
	})

	return cmd
}
