package authorizenet

import "authnet-cim/models"

// EventKind names a notification produced by interpreting a response.
type EventKind string

const (
	EventCustomerCreated   EventKind = "customer_created"
	EventCustomerFlagged   EventKind = "customer_flagged"
	EventPaymentSuccessful EventKind = "payment_successful"
	EventPaymentFlagged    EventKind = "payment_flagged"
)

// Event is returned to the caller, which decides how to dispatch it.
type Event struct {
	Kind              EventKind                   `json:"kind"`
	CustomerID        string                      `json:"customer_id,omitempty"`
	ProfileID         string                      `json:"profile_id,omitempty"`
	PaymentProfileIDs []string                    `json:"payment_profile_ids,omitempty"`
	Response          *models.CIMResponse         `json:"response,omitempty"`
	Transaction       *models.TransactionResponse `json:"transaction,omitempty"`
}

// Key groups related events, e.g. for partitioning a stream.
func (e Event) Key() string {
	if e.ProfileID != "" {
		return e.ProfileID
	}
	return e.CustomerID
}
