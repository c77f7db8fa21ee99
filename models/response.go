package models

import "time"

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CIMResponse is the outcome of one CIM request.
type CIMResponse struct {
	ID                  string               `json:"id,omitempty"`
	Action              string               `json:"action"`
	Result              string               `json:"result"`
	ResultCode          string               `json:"result_code"`
	ResultText          string               `json:"result_text"`
	Success             bool                 `json:"success"`
	TransactionResponse *TransactionResponse `json:"transaction_response,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// PaymentProfile is one payment profile returned by getCustomerProfile.
// Billing and CreditCard use underscore keys (first_name, card_number).
type PaymentProfile struct {
	PaymentProfileID string            `json:"payment_profile_id"`
	Billing          map[string]string `json:"billing,omitempty"`
	CreditCard       map[string]string `json:"credit_card,omitempty"`
}
