package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"authnet-cim/config"
	"authnet-cim/database"
	"authnet-cim/models"
	"authnet-cim/queue"
	"authnet-cim/services/auth"
	"authnet-cim/services/payment/authorizenet"
)

type stubGateway struct {
	customerID string
	card, bill authorizenet.FormData
	params     authorizenet.TransactionParams
	response   *models.CIMResponse
}

func (g *stubGateway) AddProfile(_ context.Context, customerID string, card, bill authorizenet.FormData) (*authorizenet.ProfileResult, error) {
	g.customerID, g.card, g.bill = customerID, card, bill
	return &authorizenet.ProfileResult{Response: g.response, ProfileID: "12345"}, nil
}

func (g *stubGateway) CreatePaymentProfile(context.Context, string, authorizenet.FormData, authorizenet.FormData) (*authorizenet.PaymentProfileResult, error) {
	return &authorizenet.PaymentProfileResult{Response: g.response}, nil
}

func (g *stubGateway) UpdatePaymentProfile(context.Context, string, string, authorizenet.FormData, authorizenet.FormData) (*models.CIMResponse, error) {
	return g.response, nil
}

func (g *stubGateway) DeletePaymentProfile(context.Context, string, string) (*models.CIMResponse, error) {
	return g.response, nil
}

func (g *stubGateway) GetProfile(context.Context, string) (*authorizenet.GetProfileResult, error) {
	return &authorizenet.GetProfileResult{Response: g.response}, nil
}

func (g *stubGateway) ProcessTransaction(_ context.Context, p authorizenet.TransactionParams) (*authorizenet.TransactionResult, error) {
	g.params = p
	return &authorizenet.TransactionResult{Response: g.response}, nil
}

func testApp(gateway *stubGateway) *app {
	a := &app{
		logger: zap.NewNop(),
		cfg:    &config.Config{JWT: config.JWTConfig{Secret: "secret", Issuer: "authnet-cim"}},
	}
	if gateway != nil {
		a.gateway = gateway
	}
	return a
}

func run(t *testing.T, gateway *stubGateway, args ...string) (string, error) {
	t.Helper()
	return runApp(t, testApp(gateway), args...)
}

func runApp(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return queue.NewQueueWithClient(client, "cim:events", nil)
}

func TestAddProfileCommand(t *testing.T) {
	gateway := &stubGateway{response: &models.CIMResponse{Success: true, ResultCode: "I00001"}}

	out, err := run(t, gateway, "add-profile", "42",
		"--card", "card_number=4111111111111111,expiration_date=12/30",
		"--bill", "first_name=Jane",
	)
	require.NoError(t, err)
	assert.Equal(t, "42", gateway.customerID)
	assert.Equal(t, "4111111111111111", gateway.card["card_number"])
	assert.Equal(t, "12/30", gateway.card["expiration_date"])
	assert.Equal(t, "Jane", gateway.bill["first_name"])

	var result authorizenet.ProfileResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "12345", result.ProfileID)
}

func TestRejectionExitsWithError(t *testing.T) {
	gateway := &stubGateway{response: &models.CIMResponse{ResultCode: "E00040", ResultText: "The record cannot be found."}}

	_, err := run(t, gateway, "delete-payment-profile", "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E00040")
}

func TestTransactionCommand(t *testing.T) {
	gateway := &stubGateway{response: &models.CIMResponse{Success: true}}

	_, err := run(t, gateway, "transaction", "12345", "20000", "--type", "AuthOnly", "--amount", "10.5")
	require.NoError(t, err)
	assert.Equal(t, authorizenet.AuthOnly, gateway.params.Type)
	assert.Equal(t, "10.50", gateway.params.Amount.StringFixed(2))
	assert.Equal(t, "20000", gateway.params.PaymentProfileID)
}

func TestTransactionParamsValidation(t *testing.T) {
	_, err := transactionParams("1", "2", "Credit", "1.00", "", "")
	assert.Error(t, err)

	_, err = transactionParams("1", "2", "AuthOnly", "0", "", "")
	assert.Error(t, err)

	_, err = transactionParams("1", "2", "Void", "1.00", "", "")
	assert.Error(t, err)

	p, err := transactionParams("1", "2", "Void", "1.00", "2230000001", ";")
	require.NoError(t, err)
	assert.Equal(t, "2230000001", p.TransactionID)
	assert.Equal(t, ";", p.Delimiter)
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, &stubGateway{}, "token", "ops")
	require.NoError(t, err)

	var token models.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(out), &token))

	client, err := auth.NewJWTService("secret", "authnet-cim").ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", client.ClientID)
}

func TestSandboxAndLiveAreExclusive(t *testing.T) {
	_, err := run(t, &stubGateway{}, "get-profile", "1", "--sandbox", "--live")
	assert.Error(t, err)
}

func TestCommandsQueueEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\ufeff<createCustomerProfileResponse xmlns=\"AnetApi/xml/v1/schema/AnetApiSchema.xsd\">" +
			"<messages><resultCode>Ok</resultCode><message><code>I00001</code><text>Successful.</text></message></messages>" +
			"<customerProfileId>12345</customerProfileId>" +
			"<customerPaymentProfileIdList><numericString>20000</numericString></customerPaymentProfileIdList>" +
			"</createCustomerProfileResponse>"))
	}))
	defer srv.Close()

	q := newTestQueue(t)
	a := testApp(nil)
	a.cfg.AuthNet.Endpoint = srv.URL
	a.cfg.Redis.URL = "redis://unused"
	a.queue = q

	_, err := runApp(t, a, "add-profile", "42", "--card", "card_number=4111111111111111,expiration_date=2030-12")
	require.NoError(t, err)

	msg, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, string(authorizenet.EventCustomerCreated), msg.Kind)

	var event authorizenet.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, "12345", event.ProfileID)
}

func TestResponseCommand(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	columns := []string{"id", "action", "result", "result_code", "result_text", "success", "created_at", "fields"}
	mock.ExpectQuery("SELECT (.+) FROM cim_responses r").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("abc", "getCustomerProfileRequest", "Ok", "I00001", "Successful.", true, time.Now(), nil))
	mock.ExpectQuery("SELECT (.+) FROM cim_responses r").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	a := testApp(nil)
	a.db = database.NewConnectionWithDB(db, nil)

	out, err := runApp(t, a, "response", "abc")
	require.NoError(t, err)
	var resp models.CIMResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, "I00001", resp.ResultCode)

	_, err = runApp(t, a, "response", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestEventsFailedAndRequeue(t *testing.T) {
	q := newTestQueue(t)
	q.MaxRetries = 0
	ctx := context.Background()

	published, err := q.Publish(ctx, string(authorizenet.EventPaymentFlagged), authorizenet.Event{})
	require.NoError(t, err)
	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, msg, errors.New("kafka down")))

	a := testApp(nil)
	a.queue = q

	out, err := runApp(t, a, "events", "failed")
	require.NoError(t, err)
	var failed []queue.Message
	require.NoError(t, json.Unmarshal([]byte(out), &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, "kafka down", failed[0].LastError)

	out, err = runApp(t, a, "events", "requeue", published.ID)
	require.NoError(t, err)
	assert.Contains(t, out, published.ID)
}

func TestAdminCommandsNeedConfiguration(t *testing.T) {
	_, err := run(t, nil, "customer", "42")
	assert.Error(t, err)

	_, err = run(t, nil, "events", "failed")
	assert.Error(t, err)
}
