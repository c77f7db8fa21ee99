package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authnet-cim/models"
)

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewConnectionWithDB(db, nil), mock
}

func TestSaveCIMResponseWithoutTransaction(t *testing.T) {
	conn, mock := newMockConnection(t)

	resp := &models.CIMResponse{
		Action:     "getCustomerProfileRequest",
		Result:     "Ok",
		ResultCode: "I00001",
		ResultText: "Successful.",
		Success:    true,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cim_responses").
		WithArgs(sqlmock.AnyArg(), resp.Action, "Ok", "I00001", "Successful.", true, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, conn.SaveCIMResponse(context.Background(), resp))
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCIMResponseWithTransaction(t *testing.T) {
	conn, mock := newMockConnection(t)

	resp := &models.CIMResponse{
		ID:                  "fixed-id",
		Action:              "createCustomerProfileTransactionRequest",
		Result:              "Ok",
		Success:             true,
		TransactionResponse: models.NewTransactionResponse([]string{"1", "1", "1", "Approved", "ABC", "Y", "2230582188"}),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transaction_responses").
		WithArgs(sqlmock.AnyArg(), "1", "1", "Approved", "ABC", "Y", "2230582188", "", "", "", "", "", "",
			`["1","1","1","Approved","ABC","Y","2230582188"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cim_responses").
		WithArgs("fixed-id", resp.Action, "Ok", "", "", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, conn.SaveCIMResponse(context.Background(), resp))
	assert.Equal(t, "fixed-id", resp.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCIMResponseRollsBack(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cim_responses").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := conn.SaveCIMResponse(context.Background(), &models.CIMResponse{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCIMResponse(t *testing.T) {
	conn, mock := newMockConnection(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	columns := []string{"id", "action", "result", "result_code", "result_text", "success", "created_at", "fields"}
	mock.ExpectQuery("SELECT (.+) FROM cim_responses r").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("abc", "createCustomerProfileTransactionRequest", "Ok", "I00001", "Successful.", true, created, `["2","1","2","Declined","","","0"]`))

	resp, err := conn.GetCIMResponse(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.ID)
	assert.True(t, resp.Success)
	assert.Equal(t, created, resp.CreatedAt)
	require.NotNil(t, resp.TransactionResponse)
	assert.True(t, resp.TransactionResponse.IsDeclined())
	assert.Equal(t, "Declined", resp.TransactionResponse.ResponseReasonText)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCIMResponseWithoutTransaction(t *testing.T) {
	conn, mock := newMockConnection(t)

	columns := []string{"id", "action", "result", "result_code", "result_text", "success", "created_at", "fields"}
	mock.ExpectQuery("SELECT (.+) FROM cim_responses r").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("abc", "getCustomerProfileRequest", "Error", "E00040", "The record cannot be found.", false, time.Now(), nil))

	resp, err := conn.GetCIMResponse(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.TransactionResponse)
}

func TestGetCIMResponseNotFound(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery("SELECT (.+) FROM cim_responses r").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := conn.GetCIMResponse(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
