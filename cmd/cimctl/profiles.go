package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"authnet-cim/models"
	"authnet-cim/services/payment/authorizenet"
)

// formFlags binds --card and --bill as repeatable key=value pairs using the
// underscore field names (card_number, expiration_date, first_name, zip).
type formFlags struct {
	card map[string]string
	bill map[string]string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringToStringVar(&f.card, "card", nil, "Card field, e.g. card_number=4111111111111111 (repeatable)")
	cmd.Flags().StringToStringVar(&f.bill, "bill", nil, "Billing field, e.g. first_name=Jane (repeatable)")
}

func (f *formFlags) forms() (authorizenet.FormData, authorizenet.FormData) {
	return authorizenet.FormData(f.card), authorizenet.FormData(f.bill)
}

// report prints v and turns a gateway rejection into a non-zero exit.
func report(cmd *cobra.Command, resp *models.CIMResponse, v interface{}) error {
	if err := printJSON(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if resp != nil && !resp.Success {
		return fmt.Errorf("gateway rejected request: %s %s", resp.ResultCode, resp.ResultText)
	}
	return nil
}

func addProfileCmd(a *app) *cobra.Command {
	var forms formFlags
	cmd := &cobra.Command{
		Use:   "add-profile [customer-id]",
		Short: "Create a customer profile with one payment profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, bill := forms.forms()
			gateway, err := a.client()
			if err != nil {
				return err
			}
			result, err := gateway.AddProfile(context.Background(), args[0], card, bill)
			if err != nil {
				return err
			}
			return report(cmd, result.Response, result)
		},
	}
	forms.register(cmd)
	return cmd
}

func getProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get-profile [profile-id]",
		Short: "Fetch a customer profile and its payment profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := a.client()
			if err != nil {
				return err
			}
			result, err := gateway.GetProfile(context.Background(), args[0])
			if err != nil {
				return err
			}
			return report(cmd, result.Response, result)
		},
	}
}

func createPaymentProfileCmd(a *app) *cobra.Command {
	var forms formFlags
	cmd := &cobra.Command{
		Use:   "create-payment-profile [profile-id]",
		Short: "Add a payment profile to an existing customer profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, bill := forms.forms()
			gateway, err := a.client()
			if err != nil {
				return err
			}
			result, err := gateway.CreatePaymentProfile(context.Background(), args[0], card, bill)
			if err != nil {
				return err
			}
			return report(cmd, result.Response, result)
		},
	}
	forms.register(cmd)
	return cmd
}

func updatePaymentProfileCmd(a *app) *cobra.Command {
	var forms formFlags
	cmd := &cobra.Command{
		Use:   "update-payment-profile [profile-id] [payment-profile-id]",
		Short: "Replace the billing and card details of a payment profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, bill := forms.forms()
			gateway, err := a.client()
			if err != nil {
				return err
			}
			resp, err := gateway.UpdatePaymentProfile(context.Background(), args[0], args[1], card, bill)
			if err != nil {
				return err
			}
			return report(cmd, resp, resp)
		},
	}
	forms.register(cmd)
	return cmd
}

func deletePaymentProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-payment-profile [profile-id] [payment-profile-id]",
		Short: "Delete a payment profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := a.client()
			if err != nil {
				return err
			}
			resp, err := gateway.DeletePaymentProfile(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			return report(cmd, resp, resp)
		},
	}
}
