package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"authnet-cim/services/payment/authorizenet"
	"authnet-cim/utils"
)

func transactionCmd(a *app) *cobra.Command {
	var (
		txType        string
		amount        string
		transactionID string
		delimiter     string
	)

	types := make([]string, len(authorizenet.TransactionTypes))
	for i, t := range authorizenet.TransactionTypes {
		types[i] = string(t)
	}

	cmd := &cobra.Command{
		Use:   "transaction [profile-id] [payment-profile-id]",
		Short: "Run a transaction against a stored payment profile",
		Long:  "Run a transaction against a stored payment profile.\n\nTypes: " + strings.Join(types, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := transactionParams(args[0], args[1], txType, amount, transactionID, delimiter)
			if err != nil {
				return err
			}
			gateway, err := a.client()
			if err != nil {
				return err
			}
			result, err := gateway.ProcessTransaction(context.Background(), params)
			if err != nil {
				return err
			}
			return report(cmd, result.Response, result)
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", string(authorizenet.AuthCapture), "Transaction type")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 19.99")
	cmd.Flags().StringVar(&transactionID, "transaction-id", "", "Prior transaction for PriorAuthCapture, Refund and Void")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "directResponse delimiter (defaults to AUTHNET_DELIM_CHAR)")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func transactionParams(profileID, paymentProfileID, txType, amount, transactionID, delimiter string) (authorizenet.TransactionParams, error) {
	t, err := authorizenet.ParseTransactionType(txType)
	if err != nil {
		return authorizenet.TransactionParams{}, err
	}
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return authorizenet.TransactionParams{}, err
	}
	if t.RequiresTransactionID() && transactionID == "" {
		return authorizenet.TransactionParams{}, fmt.Errorf("--transaction-id is required for %s", t)
	}
	return authorizenet.TransactionParams{
		ProfileID:        profileID,
		PaymentProfileID: paymentProfileID,
		Type:             t,
		Amount:           value,
		TransactionID:    transactionID,
		Delimiter:        delimiter,
	}, nil
}
