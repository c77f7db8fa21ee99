package authorizenet

import (
	"context"

	"go.uber.org/zap"

	"authnet-cim/models"
)

// ProfileResult is returned by AddProfile. The IDs are set only when the
// gateway accepted the profile.
type ProfileResult struct {
	Response          *models.CIMResponse `json:"response"`
	ProfileID         string              `json:"profile_id,omitempty"`
	PaymentProfileIDs []string            `json:"payment_profile_ids,omitempty"`
	Events            []Event             `json:"events,omitempty"`
}

type PaymentProfileResult struct {
	Response         *models.CIMResponse `json:"response"`
	PaymentProfileID string              `json:"payment_profile_id,omitempty"`
}

type GetProfileResult struct {
	Response        *models.CIMResponse     `json:"response"`
	PaymentProfiles []models.PaymentProfile `json:"payment_profiles"`
}

// TransactionResult is returned by ProcessTransaction. Truncated reports a
// directResponse with fewer fields than a complete one.
type TransactionResult struct {
	Response  *models.CIMResponse `json:"response"`
	Truncated bool                `json:"truncated,omitempty"`
	Events    []Event             `json:"events,omitempty"`
}

// AddProfile creates a customer profile with one payment profile built from
// the payment and billing forms (underscore keys).
func (c *Client) AddProfile(ctx context.Context, customerID string, paymentForm, billingForm FormData) (*ProfileResult, error) {
	payment, err := paymentFields(paymentForm)
	if err != nil {
		return nil, err
	}

	result, err := c.Execute(ctx, CreateProfile(CreateProfileParams{
		CustomerID: customerID,
		Billing:    ToExternal(billingForm),
		CreditCard: payment,
	}))
	if err != nil {
		return nil, err
	}

	out := &ProfileResult{Response: result.Response()}
	if out.Response.Success {
		out.ProfileID = result.ProfileID
		out.PaymentProfileIDs = result.PaymentProfileIDs
		out.Events = []Event{{
			Kind:              EventCustomerCreated,
			CustomerID:        customerID,
			ProfileID:         result.ProfileID,
			PaymentProfileIDs: result.PaymentProfileIDs,
			Response:          out.Response,
		}}
	} else {
		c.logger.Warn("Customer profile rejected",
			zap.String("customer_id", customerID),
			zap.String("code", out.Response.ResultCode),
			zap.String("text", out.Response.ResultText),
		)
		out.Events = []Event{{
			Kind:       EventCustomerFlagged,
			CustomerID: customerID,
			Response:   out.Response,
		}}
	}
	return out, nil
}

// CreatePaymentProfile adds a payment profile to an existing profile.
func (c *Client) CreatePaymentProfile(ctx context.Context, profileID string, paymentForm, billingForm FormData) (*PaymentProfileResult, error) {
	payment, err := paymentFields(paymentForm)
	if err != nil {
		return nil, err
	}

	result, err := c.Execute(ctx, CreatePaymentProfile(CreatePaymentProfileParams{
		ProfileID:  profileID,
		Billing:    ToExternal(billingForm),
		CreditCard: payment,
	}))
	if err != nil {
		return nil, err
	}

	out := &PaymentProfileResult{Response: result.Response()}
	if out.Response.Success {
		out.PaymentProfileID = result.PaymentProfileID
	}
	return out, nil
}

func (c *Client) UpdatePaymentProfile(ctx context.Context, profileID, paymentProfileID string, paymentForm, billingForm FormData) (*models.CIMResponse, error) {
	payment, err := paymentFields(paymentForm)
	if err != nil {
		return nil, err
	}

	result, err := c.Execute(ctx, UpdatePaymentProfile(UpdatePaymentProfileParams{
		ProfileID:        profileID,
		PaymentProfileID: paymentProfileID,
		Billing:          ToExternal(billingForm),
		CreditCard:       payment,
	}))
	if err != nil {
		return nil, err
	}
	return result.Response(), nil
}

func (c *Client) DeletePaymentProfile(ctx context.Context, profileID, paymentProfileID string) (*models.CIMResponse, error) {
	result, err := c.Execute(ctx, DeletePaymentProfile(DeletePaymentProfileParams{
		ProfileID:        profileID,
		PaymentProfileID: paymentProfileID,
	}))
	if err != nil {
		return nil, err
	}
	return result.Response(), nil
}

// GetProfile returns the profile's payment profiles with underscore keys.
func (c *Client) GetProfile(ctx context.Context, profileID string) (*GetProfileResult, error) {
	result, err := c.Execute(ctx, GetProfile(GetProfileParams{ProfileID: profileID}))
	if err != nil {
		return nil, err
	}
	return &GetProfileResult{
		Response:        result.Response(),
		PaymentProfiles: result.PaymentProfiles,
	}, nil
}

// ProcessTransaction runs a transaction against a stored payment profile.
// An empty p.Delimiter uses the configured delimiter.
func (c *Client) ProcessTransaction(ctx context.Context, p TransactionParams) (*TransactionResult, error) {
	if p.Delimiter == "" {
		p.Delimiter = c.config.DelimChar
	}

	result, err := c.Execute(ctx, CreateTransaction(p))
	if err != nil {
		return nil, err
	}

	out := &TransactionResult{Response: result.Response(), Truncated: result.Truncated}
	if tx := out.Response.TransactionResponse; tx != nil {
		kind := EventPaymentFlagged
		switch {
		case tx.IsApproved():
			kind = EventPaymentSuccessful
		case tx.IsHeld():
			c.logger.Warn("Transaction held for review",
				zap.String("profile_id", p.ProfileID),
				zap.String("trans_id", tx.TransactionID),
				zap.String("reason", tx.ResponseReasonText),
			)
		case tx.IsDeclined():
			c.logger.Info("Transaction declined",
				zap.String("profile_id", p.ProfileID),
				zap.String("reason_code", tx.ResponseReasonCode),
			)
		}
		out.Events = []Event{{
			Kind:              kind,
			ProfileID:         p.ProfileID,
			PaymentProfileIDs: []string{p.PaymentProfileID},
			Response:          out.Response,
			Transaction:       tx,
		}}
	}
	return out, nil
}
