package authorizenet

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const responseNS = `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="AnetApi/xml/v1/schema/AnetApiSchema.xsd"`

const okMessages = `<messages><resultCode>Ok</resultCode><message><code>I00001</code><text>Successful.</text></message></messages>`

func parseRoot(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func directResponse(delim string, fields map[int]string, n int) string {
	out := make([]string, n)
	for i, v := range fields {
		out[i] = v
	}
	return strings.Join(out, delim)
}

func TestExtractStatus(t *testing.T) {
	root := parseRoot(t, `<getCustomerProfileResponse `+responseNS+`>`+okMessages+`</getCustomerProfileResponse>`)

	status, err := extractStatus(ActionGetProfile, root)
	require.NoError(t, err)
	assert.Equal(t, Status{ResultCode: "Ok", Code: "I00001", Text: "Successful."}, status)
	assert.True(t, status.OK())
}

func TestExtractStatusUsesFirstMessage(t *testing.T) {
	root := parseRoot(t, `<r><messages><resultCode>Error</resultCode>`+
		`<message><code>E00039</code><text>A duplicate record already exists.</text></message>`+
		`<message><code>E00027</code><text>Second.</text></message></messages></r>`)

	status, err := extractStatus(ActionCreateProfile, root)
	require.NoError(t, err)
	assert.False(t, status.OK())
	assert.Equal(t, "E00039", status.Code)
	assert.Equal(t, "A duplicate record already exists.", status.Text)
}

func TestExtractStatusMissingNodes(t *testing.T) {
	for _, body := range []string{
		`<r/>`,
		`<r><messages><message><code>I00001</code></message></messages></r>`,
	} {
		_, err := extractStatus(ActionGetProfile, parseRoot(t, body))
		var perr *ProtocolError
		require.True(t, errors.As(err, &perr), body)
		assert.Equal(t, ActionGetProfile, perr.Action)
	}
}

func TestExtractCreateProfile(t *testing.T) {
	root := parseRoot(t, `<createCustomerProfileResponse `+responseNS+`>`+okMessages+
		`<customerProfileId>12345</customerProfileId>`+
		`<customerPaymentProfileIdList><numericString>1</numericString><numericString>2</numericString></customerPaymentProfileIdList>`+
		`<customerShippingAddressIdList/><validationDirectResponseList/>`+
		`</createCustomerProfileResponse>`)

	result, err := Extract(CreateProfile(CreateProfileParams{}), root)
	require.NoError(t, err)
	assert.Equal(t, "12345", result.ProfileID)
	assert.Equal(t, []string{"1", "2"}, result.PaymentProfileIDs)

	resp := result.Response()
	assert.Equal(t, string(ActionCreateProfile), resp.Action)
	assert.Equal(t, "Ok", resp.Result)
	assert.Equal(t, "I00001", resp.ResultCode)
	assert.Equal(t, "Successful.", resp.ResultText)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.TransactionResponse)
}

func TestExtractCreateProfileRejected(t *testing.T) {
	root := parseRoot(t, `<createCustomerProfileResponse `+responseNS+`>`+
		`<messages><resultCode>Error</resultCode><message><code>E00039</code><text>A duplicate record with ID 99 already exists.</text></message></messages>`+
		`</createCustomerProfileResponse>`)

	result, err := Extract(CreateProfile(CreateProfileParams{}), root)
	require.NoError(t, err)
	assert.Empty(t, result.ProfileID)
	assert.Nil(t, result.PaymentProfileIDs)
	assert.False(t, result.Response().Success)
}

func TestExtractCreatePaymentProfile(t *testing.T) {
	root := parseRoot(t, `<createCustomerPaymentProfileResponse `+responseNS+`>`+okMessages+
		`<customerPaymentProfileId>20000</customerPaymentProfileId></createCustomerPaymentProfileResponse>`)

	result, err := Extract(CreatePaymentProfile(CreatePaymentProfileParams{}), root)
	require.NoError(t, err)
	assert.Equal(t, "20000", result.PaymentProfileID)
}

func TestExtractGetProfile(t *testing.T) {
	root := parseRoot(t, `<getCustomerProfileResponse `+responseNS+`>`+okMessages+
		`<profile><merchantCustomerId>42</merchantCustomerId><customerProfileId>10</customerProfileId>`+
		`<paymentProfiles>`+
		`<billTo><firstName>Ann</firstName><lastName>Lee</lastName><phoneNumber>555-0100</phoneNumber><zip/></billTo>`+
		`<customerPaymentProfileId>1</customerPaymentProfileId>`+
		`<payment><creditCard><cardNumber>XXXX1111</cardNumber><expirationDate>XXXX</expirationDate></creditCard></payment>`+
		`</paymentProfiles>`+
		`<paymentProfiles>`+
		`<customerPaymentProfileId>2</customerPaymentProfileId>`+
		`<payment><creditCard><cardNumber>XXXX0027</cardNumber></creditCard></payment>`+
		`</paymentProfiles>`+
		`</profile></getCustomerProfileResponse>`)

	result, err := Extract(GetProfile(GetProfileParams{ProfileID: "10"}), root)
	require.NoError(t, err)
	require.Len(t, result.PaymentProfiles, 2)

	first := result.PaymentProfiles[0]
	assert.Equal(t, "1", first.PaymentProfileID)
	assert.Equal(t, map[string]string{
		"first_name":   "Ann",
		"last_name":    "Lee",
		"phone_number": "555-0100",
		"zip":          "",
	}, first.Billing)
	assert.Equal(t, map[string]string{
		"card_number":     "XXXX1111",
		"expiration_date": "XXXX",
	}, first.CreditCard)

	second := result.PaymentProfiles[1]
	assert.Equal(t, "2", second.PaymentProfileID)
	assert.Nil(t, second.Billing)
	assert.Equal(t, map[string]string{"card_number": "XXXX0027"}, second.CreditCard)
}

func TestExtractGetProfileWithoutPaymentProfiles(t *testing.T) {
	root := parseRoot(t, `<getCustomerProfileResponse `+responseNS+`>`+okMessages+
		`<profile><customerProfileId>10</customerProfileId></profile></getCustomerProfileResponse>`)

	result, err := Extract(GetProfile(GetProfileParams{}), root)
	require.NoError(t, err)
	assert.NotNil(t, result.PaymentProfiles)
	assert.Empty(t, result.PaymentProfiles)
}

func TestExtractTransaction(t *testing.T) {
	raw := directResponse("|", map[int]string{
		0: "1", 1: "1", 2: "1", 3: "This transaction has been approved.",
		4: "AUTH01", 5: "Y", 6: "2230582188", 9: "10.50", 10: "CC", 11: "auth_capture",
		50: "XXXX1111", 51: "Visa",
	}, 68)
	root := parseRoot(t, `<createCustomerProfileTransactionResponse `+responseNS+`>`+okMessages+
		`<directResponse>`+raw+`</directResponse></createCustomerProfileTransactionResponse>`)

	op := CreateTransaction(TransactionParams{Type: AuthCapture, Delimiter: "|"})
	result, err := Extract(op, root)
	require.NoError(t, err)
	assert.Equal(t, raw, result.DirectResponse)
	assert.Len(t, result.TransactionFields, 68)

	tx := result.Response().TransactionResponse
	require.NotNil(t, tx)
	assert.True(t, tx.IsApproved())
	assert.Equal(t, "This transaction has been approved.", tx.ResponseReasonText)
	assert.Equal(t, "AUTH01", tx.AuthCode)
	assert.Equal(t, "2230582188", tx.TransactionID)
	assert.Equal(t, "10.50", tx.Amount)
	assert.Equal(t, "XXXX1111", tx.AccountNumber)
	assert.Equal(t, "Visa", tx.CardType)
}

func TestExtractTransactionWithoutDirectResponse(t *testing.T) {
	root := parseRoot(t, `<createCustomerProfileTransactionResponse `+responseNS+`>`+
		`<messages><resultCode>Error</resultCode><message><code>E00040</code><text>The record cannot be found.</text></message></messages>`+
		`</createCustomerProfileTransactionResponse>`)

	result, err := Extract(CreateTransaction(TransactionParams{Delimiter: "|"}), root)
	require.NoError(t, err)
	assert.Empty(t, result.DirectResponse)
	assert.Nil(t, result.Response().TransactionResponse)
}

func TestExtractTransactionShortDirectResponse(t *testing.T) {
	raw := "1|1|1|This transaction has been approved.|ABC123"
	root := parseRoot(t, `<createCustomerProfileTransactionResponse `+responseNS+`>`+okMessages+
		`<directResponse>`+raw+`</directResponse></createCustomerProfileTransactionResponse>`)

	result, err := Extract(CreateTransaction(TransactionParams{Type: AuthOnly, Delimiter: "|"}), root)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, raw, result.DirectResponse)
	assert.Equal(t, []string{"1", "1", "1", "This transaction has been approved.", "ABC123"}, result.TransactionFields)

	resp := result.Response()
	assert.True(t, resp.Success)
	require.NotNil(t, resp.TransactionResponse)
	assert.True(t, resp.TransactionResponse.IsApproved())
	assert.Equal(t, "ABC123", resp.TransactionResponse.AuthCode)
	assert.Empty(t, resp.TransactionResponse.TransactionID)
}

func TestExtractTransactionWrongDelimiter(t *testing.T) {
	raw := directResponse(",", map[int]string{0: "1", 6: "123"}, 10)
	root := parseRoot(t, `<r>`+okMessages+`<directResponse>`+raw+`</directResponse></r>`)

	result, err := Extract(CreateTransaction(TransactionParams{Delimiter: "|"}), root)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, []string{raw}, result.TransactionFields)
	assert.True(t, result.Response().Success)
}

func TestExtractTransactionDefaultDelimiter(t *testing.T) {
	root := parseRoot(t, `<r>`+okMessages+`<directResponse>1|1|1|ok|A|Y|123</directResponse></r>`)

	result, err := Extract(CreateTransaction(TransactionParams{}), root)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Equal(t, []string{"1", "1", "1", "ok", "A", "Y", "123"}, result.TransactionFields)
}

func TestExtractTransactionRejectsLongDelimiter(t *testing.T) {
	root := parseRoot(t, `<r>`+okMessages+`<directResponse>1||1</directResponse></r>`)

	_, err := Extract(CreateTransaction(TransactionParams{Delimiter: "||"}), root)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "delimiter", verr.Field)
}

func TestExtractMissingMessages(t *testing.T) {
	root := parseRoot(t, `<ErrorResponse `+responseNS+`/>`)

	_, err := Extract(DeletePaymentProfile(DeletePaymentProfileParams{}), root)
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
}

func TestCollectFields(t *testing.T) {
	el := parseRoot(t, `<billTo><city>Indy</city><unknown>x</unknown><state>IN</state></billTo>`)
	assert.Equal(t, Fields{"city": "Indy", "state": "IN"}, collectFields(el, BillingFields))
}
