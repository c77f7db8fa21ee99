package payment

import (
	"context"

	"authnet-cim/models"
	"authnet-cim/services/payment/authorizenet"
)

// Gateway is the CIM client. *authorizenet.Client implements it.
type Gateway interface {
	AddProfile(ctx context.Context, customerID string, paymentForm, billingForm authorizenet.FormData) (*authorizenet.ProfileResult, error)
	CreatePaymentProfile(ctx context.Context, profileID string, paymentForm, billingForm authorizenet.FormData) (*authorizenet.PaymentProfileResult, error)
	UpdatePaymentProfile(ctx context.Context, profileID, paymentProfileID string, paymentForm, billingForm authorizenet.FormData) (*models.CIMResponse, error)
	DeletePaymentProfile(ctx context.Context, profileID, paymentProfileID string) (*models.CIMResponse, error)
	GetProfile(ctx context.Context, profileID string) (*authorizenet.GetProfileResult, error)
	ProcessTransaction(ctx context.Context, p authorizenet.TransactionParams) (*authorizenet.TransactionResult, error)
}

// Store persists responses and the profile IDs the gateway assigned.
// *database.Connection implements it.
type Store interface {
	SaveCIMResponse(ctx context.Context, resp *models.CIMResponse) error
	SaveCustomerProfile(ctx context.Context, customerID, profileID string, paymentProfileIDs []string) error
	SavePaymentProfile(ctx context.Context, profileID, paymentProfileID string) error
	DeletePaymentProfile(ctx context.Context, profileID, paymentProfileID string) error
}
