package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"authnet-cim/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// SaveCIMResponse stores resp and its transaction response, if any, in one
// transaction. It assigns resp.ID and resp.CreatedAt when they are unset.
func (c *Connection) SaveCIMResponse(ctx context.Context, resp *models.CIMResponse) error {
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := c.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var transactionID string
	if resp.TransactionResponse != nil {
		transactionID = uuid.New().String()
		if err := tx.SaveTransactionResponse(ctx, transactionID, resp.TransactionResponse); err != nil {
			return err
		}
	}

	if err := tx.SaveCIMResponse(ctx, resp, transactionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cim response: %w", err)
	}

	c.logger.Debug("Saved cim response",
		zap.String("id", resp.ID),
		zap.String("action", resp.Action),
		zap.Bool("has_transaction", transactionID != ""),
	)
	return nil
}

func (c *Connection) GetCIMResponse(ctx context.Context, id string) (*models.CIMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT r.id, r.action, r.result, r.result_code, r.result_text, r.success,
		       r.created_at, t.fields
		FROM cim_responses r
		LEFT JOIN transaction_responses t ON t.id = r.transaction_response_id
		WHERE r.id = ?
	`

	var resp models.CIMResponse
	var fields sql.NullString
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&resp.ID,
		&resp.Action,
		&resp.Result,
		&resp.ResultCode,
		&resp.ResultText,
		&resp.Success,
		&resp.CreatedAt,
		&fields,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting cim response: %w", err)
	}

	if fields.Valid {
		var raw []string
		if err := json.Unmarshal([]byte(fields.String), &raw); err != nil {
			return nil, fmt.Errorf("error decoding transaction fields: %w", err)
		}
		resp.TransactionResponse = models.NewTransactionResponse(raw)
	}

	return &resp, nil
}
