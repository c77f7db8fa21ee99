package authorizenet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// TransactionType selects the profileTrans<Type> node of a transaction
// request.
type TransactionType string

const (
	AuthOnly         TransactionType = "AuthOnly"
	AuthCapture      TransactionType = "AuthCapture"
	CaptureOnly      TransactionType = "CaptureOnly"
	PriorAuthCapture TransactionType = "PriorAuthCapture"
	Refund           TransactionType = "Refund"
	Void             TransactionType = "Void"
)

// TransactionTypes lists every accepted transaction type.
var TransactionTypes = []TransactionType{
	AuthOnly, AuthCapture, CaptureOnly, PriorAuthCapture, Refund, Void,
}

const transactionNodePrefix = "profileTrans"

// DefaultDelimiter is used when neither the request nor the client
// configuration names one.
const DefaultDelimiter = "|"

// ParseTransactionType accepts exactly the names in TransactionTypes.
func ParseTransactionType(s string) (TransactionType, error) {
	for _, t := range TransactionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "transaction type", Message: fmt.Sprintf("unsupported type %q", s)}
}

// Valid reports whether t is one of TransactionTypes.
func (t TransactionType) Valid() bool {
	_, err := ParseTransactionType(string(t))
	return err == nil
}

// RequiresTransactionID reports whether the gateway needs the ID of a prior
// transaction for t. The request builder does not enforce it.
func (t TransactionType) RequiresTransactionID() bool {
	switch t {
	case PriorAuthCapture, Refund, Void:
		return true
	}
	return false
}

// NodeName is the element name of the typed transaction node.
func (t TransactionType) NodeName() string {
	return transactionNodePrefix + string(t)
}

// TransactionParams describes a createCustomerProfileTransactionRequest.
type TransactionParams struct {
	ProfileID        string
	PaymentProfileID string
	Type             TransactionType
	Amount           decimal.Decimal
	// TransactionID is the prior transaction for PriorAuthCapture, Refund
	// and Void.
	TransactionID string
	// Delimiter separates the fields of directResponse. It must be a single
	// character; empty means DefaultDelimiter.
	Delimiter string
}

// delimiter returns the delimiter the request asks the gateway to use.
func (p TransactionParams) delimiter() (string, error) {
	if p.Delimiter == "" {
		return DefaultDelimiter, nil
	}
	if utf8.RuneCountInString(p.Delimiter) != 1 {
		return "", &ValidationError{Field: "delimiter", Message: fmt.Sprintf("%q is not a single character", p.Delimiter)}
	}
	return p.Delimiter, nil
}

func appendTransaction(root *etree.Element, p TransactionParams) error {
	if !p.Type.Valid() {
		return &ValidationError{Field: "transaction type", Message: fmt.Sprintf("unsupported type %q", p.Type)}
	}
	delimiter, err := p.delimiter()
	if err != nil {
		return err
	}

	transaction := root.CreateElement("transaction")
	typed := transaction.CreateElement(p.Type.NodeName())

	addText(typed, "amount", p.Amount.StringFixed(2))
	addText(typed, "customerProfileId", p.ProfileID)
	addText(typed, "customerPaymentProfileId", p.PaymentProfileID)
	if p.TransactionID != "" {
		addText(typed, "transId", p.TransactionID)
	}

	addText(root, "extraOptions", "x_delim_data=TRUE&x_delim_char="+delimiter)
	return nil
}

// MinDirectResponseFields is the number of leading fields, up to and
// including the transaction ID, a complete direct response carries.
const MinDirectResponseFields = 7

// splitDirectResponse splits the raw delimited transaction result. The
// fields keep their raw text; no delimiter survives inside a field.
func splitDirectResponse(raw, delimiter string) []string {
	return strings.Split(raw, delimiter)
}
