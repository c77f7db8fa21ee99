package authorizenet

import (
	"fmt"

	"github.com/beevik/etree"

	"authnet-cim/models"
)

// CreateProfileParams describes a createCustomerProfileRequest. Billing and
// CreditCard use gateway (camelCase) names; with no credit card data the
// profile is created without a payment profile.
type CreateProfileParams struct {
	CustomerID string
	Billing    Fields
	CreditCard Fields
}

type CreatePaymentProfileParams struct {
	ProfileID  string
	Billing    Fields
	CreditCard Fields
}

type UpdatePaymentProfileParams struct {
	ProfileID        string
	PaymentProfileID string
	Billing          Fields
	CreditCard       Fields
}

type DeletePaymentProfileParams struct {
	ProfileID        string
	PaymentProfileID string
}

type GetProfileParams struct {
	ProfileID string
}

// Operation is one of the six CIM requests. Action is the tag; params holds
// the matching *Params value. Use the constructors below.
type Operation struct {
	Action Action
	params interface{}
}

func CreateProfile(p CreateProfileParams) Operation {
	return Operation{Action: ActionCreateProfile, params: p}
}

func CreatePaymentProfile(p CreatePaymentProfileParams) Operation {
	return Operation{Action: ActionCreatePaymentProfile, params: p}
}

func UpdatePaymentProfile(p UpdatePaymentProfileParams) Operation {
	return Operation{Action: ActionUpdatePaymentProfile, params: p}
}

func DeletePaymentProfile(p DeletePaymentProfileParams) Operation {
	return Operation{Action: ActionDeletePaymentProfile, params: p}
}

func GetProfile(p GetProfileParams) Operation {
	return Operation{Action: ActionGetProfile, params: p}
}

// CreateTransaction builds a transaction operation. An empty p.Delimiter
// means DefaultDelimiter; Client substitutes its configured one first.
func CreateTransaction(p TransactionParams) Operation {
	return Operation{Action: ActionCreateTransaction, params: p}
}

// Result is everything extracted from a response. Which fields are set
// depends on the operation.
type Result struct {
	Action Action
	Status Status

	ProfileID         string
	PaymentProfileID  string
	PaymentProfileIDs []string
	PaymentProfiles   []models.PaymentProfile

	// DirectResponse is the raw delimited transaction result and
	// TransactionFields its split form. Both are empty when the response
	// carried no directResponse node.
	DirectResponse    string
	TransactionFields []string
	// Truncated is set when DirectResponse split into fewer than
	// MinDirectResponseFields fields, usually a delimiter mismatch. The
	// fields are kept as split.
	Truncated bool
}

// Response assembles the response record.
func (r *Result) Response() *models.CIMResponse {
	resp := &models.CIMResponse{
		Action:     string(r.Action),
		Result:     r.Status.ResultCode,
		ResultCode: r.Status.Code,
		ResultText: r.Status.Text,
		Success:    r.Status.OK(),
	}
	if r.TransactionFields != nil {
		resp.TransactionResponse = models.NewTransactionResponse(r.TransactionFields)
	}
	return resp
}

func mismatch(op Operation) error {
	return fmt.Errorf("operation %s carries %T parameters", op.Action, op.params)
}

// Build creates the request document for op.
func Build(op Operation, auth Credentials) (*etree.Document, error) {
	doc := newDocument(op.Action, auth)
	root := doc.Root()

	switch op.Action {
	case ActionCreateProfile:
		p, ok := op.params.(CreateProfileParams)
		if !ok {
			return nil, mismatch(op)
		}
		profile := root.CreateElement("profile")
		addText(profile, "merchantCustomerId", p.CustomerID)
		if len(p.CreditCard) > 0 {
			profile.AddChild(paymentProfileElement("paymentProfiles", p.Billing, p.CreditCard))
		}

	case ActionCreatePaymentProfile:
		p, ok := op.params.(CreatePaymentProfileParams)
		if !ok {
			return nil, mismatch(op)
		}
		addText(root, "customerProfileId", p.ProfileID)
		root.AddChild(paymentProfileElement("paymentProfile", p.Billing, p.CreditCard))

	case ActionUpdatePaymentProfile:
		p, ok := op.params.(UpdatePaymentProfileParams)
		if !ok {
			return nil, mismatch(op)
		}
		addText(root, "customerProfileId", p.ProfileID)
		profile := paymentProfileElement("paymentProfile", p.Billing, p.CreditCard)
		addText(profile, "customerPaymentProfileId", p.PaymentProfileID)
		root.AddChild(profile)

	case ActionDeletePaymentProfile:
		p, ok := op.params.(DeletePaymentProfileParams)
		if !ok {
			return nil, mismatch(op)
		}
		addText(root, "customerProfileId", p.ProfileID)
		addText(root, "customerPaymentProfileId", p.PaymentProfileID)

	case ActionGetProfile:
		p, ok := op.params.(GetProfileParams)
		if !ok {
			return nil, mismatch(op)
		}
		addText(root, "customerProfileId", p.ProfileID)

	case ActionCreateTransaction:
		p, ok := op.params.(TransactionParams)
		if !ok {
			return nil, mismatch(op)
		}
		if err := appendTransaction(root, p); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown operation %q", op.Action)
	}

	return doc, nil
}

// Extract walks a response root for op's status and operation-specific
// values.
func Extract(op Operation, root *etree.Element) (*Result, error) {
	status, err := extractStatus(op.Action, root)
	if err != nil {
		return nil, err
	}
	result := &Result{Action: op.Action, Status: status}

	switch op.Action {
	case ActionCreateProfile:
		for _, el := range root.ChildElements() {
			switch el.Tag {
			case "customerProfileId":
				result.ProfileID = el.Text()
			case "customerPaymentProfileIdList":
				ids := []string{}
				for _, id := range el.ChildElements() {
					ids = append(ids, id.Text())
				}
				result.PaymentProfileIDs = ids
			}
		}

	case ActionCreatePaymentProfile:
		if el := child(root, "customerPaymentProfileId"); el != nil {
			result.PaymentProfileID = el.Text()
		}

	case ActionGetProfile:
		result.PaymentProfiles = []models.PaymentProfile{}
		if profile := child(root, "profile"); profile != nil {
			for _, el := range profile.ChildElements() {
				if el.Tag == "paymentProfiles" {
					result.PaymentProfiles = append(result.PaymentProfiles, extractPaymentProfile(el))
				}
			}
		}

	case ActionCreateTransaction:
		p, ok := op.params.(TransactionParams)
		if !ok {
			return nil, mismatch(op)
		}
		delimiter, err := p.delimiter()
		if err != nil {
			return nil, err
		}
		if el := child(root, "directResponse"); el != nil {
			result.DirectResponse = el.Text()
			result.TransactionFields = splitDirectResponse(result.DirectResponse, delimiter)
			result.Truncated = len(result.TransactionFields) < MinDirectResponseFields
		}

	case ActionUpdatePaymentProfile, ActionDeletePaymentProfile:
		// status only

	default:
		return nil, fmt.Errorf("unknown operation %q", op.Action)
	}

	return result, nil
}

func extractPaymentProfile(el *etree.Element) models.PaymentProfile {
	var profile models.PaymentProfile
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "billTo":
			profile.Billing = ToInternal(collectFields(c, BillingFields))
		case "payment":
			if cards := c.ChildElements(); len(cards) > 0 {
				profile.CreditCard = ToInternal(collectFields(cards[0], CreditCardFields))
			}
		case "customerPaymentProfileId":
			profile.PaymentProfileID = c.Text()
		}
	}
	return profile
}
