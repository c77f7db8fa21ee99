package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"authnet-cim/models"
)

type Transaction struct {
	tx *sql.Tx
}

func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *Transaction) SaveTransactionResponse(ctx context.Context, id string, r *models.TransactionResponse) error {
	raw, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode transaction fields: %w", err)
	}

	query := `
		INSERT INTO transaction_responses (
			id, response_code, response_reason_code, response_reason_text,
			auth_code, avs_code, trans_id, amount, transaction_type,
			cust_id, card_code_response, account_number, card_type, fields
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = t.tx.ExecContext(ctx, query,
		id, r.ResponseCode, r.ResponseReasonCode, r.ResponseReasonText,
		r.AuthCode, r.AVSCode, r.TransactionID, r.Amount, r.TransactionType,
		r.CustomerID, r.CardCodeResponse, r.AccountNumber, r.CardType, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction response: %w", err)
	}
	return nil
}

// SaveCIMResponse inserts resp. transactionID links the transaction row and
// may be empty.
func (t *Transaction) SaveCIMResponse(ctx context.Context, resp *models.CIMResponse, transactionID string) error {
	query := `
		INSERT INTO cim_responses (
			id, action, result, result_code, result_text, success,
			transaction_response_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var txID sql.NullString
	if transactionID != "" {
		txID = sql.NullString{String: transactionID, Valid: true}
	}

	_, err := t.tx.ExecContext(ctx, query,
		resp.ID, resp.Action, resp.Result, resp.ResultCode, resp.ResultText, resp.Success,
		txID, resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cim response: %w", err)
	}
	return nil
}
