package authorizenet

import (
	"github.com/beevik/etree"
)

// Namespace is the schema namespace declared on every request root.
const Namespace = "AnetApi/xml/v1/schema/AnetApiSchema.xsd"

// Action names the root element of a request and identifies the operation.
type Action string

const (
	ActionCreateProfile        Action = "createCustomerProfileRequest"
	ActionCreatePaymentProfile Action = "createCustomerPaymentProfileRequest"
	ActionUpdatePaymentProfile Action = "updateCustomerPaymentProfileRequest"
	ActionDeletePaymentProfile Action = "deleteCustomerPaymentProfileRequest"
	ActionGetProfile           Action = "getCustomerProfileRequest"
	ActionCreateTransaction    Action = "createCustomerProfileTransactionRequest"
)

// Credentials is the merchantAuthentication block.
type Credentials struct {
	LoginID        string
	TransactionKey string
}

// Status is the content of the response's messages node.
type Status struct {
	ResultCode string // "Ok" or "Error"
	Code       string
	Text       string
}

// OK reports whether the gateway accepted the request.
func (s Status) OK() bool { return s.ResultCode == ResultOK }

const (
	ResultOK    = "Ok"
	ResultError = "Error"
)

// newDocument creates the request skeleton: the namespaced root named by
// action with merchantAuthentication as its first child.
func newDocument(action Action, auth Credentials) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement(string(action))
	root.CreateAttr("xmlns", Namespace)

	authentication := root.CreateElement("merchantAuthentication")
	addText(authentication, "name", auth.LoginID)
	addText(authentication, "transactionKey", auth.TransactionKey)

	return doc
}

// addText appends <name>text</name> to parent.
func addText(parent *etree.Element, name, text string) *etree.Element {
	el := parent.CreateElement(name)
	el.SetText(text)
	return el
}

// child returns the first direct child of el whose local name is name.
func child(el *etree.Element, name string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == name {
			return c
		}
	}
	return nil
}

// extractStatus reads resultCode and the first message's code and text
// from the root's messages child.
func extractStatus(action Action, root *etree.Element) (Status, error) {
	messages := child(root, "messages")
	if messages == nil {
		return Status{}, &ProtocolError{Action: action, Reason: "missing messages node"}
	}

	resultCode := child(messages, "resultCode")
	if resultCode == nil {
		return Status{}, &ProtocolError{Action: action, Reason: "missing messages/resultCode node"}
	}

	status := Status{ResultCode: resultCode.Text()}
	if message := child(messages, "message"); message != nil {
		if code := child(message, "code"); code != nil {
			status.Code = code.Text()
		}
		if text := child(message, "text"); text != nil {
			status.Text = text.Text()
		}
	}
	return status, nil
}
