package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CustomerProfileData links a merchant customer ID to its gateway profile.
type CustomerProfileData struct {
	CustomerID        string    `json:"customer_id"`
	ProfileID         string    `json:"profile_id"`
	PaymentProfileIDs []string  `json:"payment_profile_ids"`
	CreatedAt         time.Time `json:"created_at"`
}

// SaveCustomerProfile records a newly created gateway profile and its
// payment profiles.
func (c *Connection) SaveCustomerProfile(ctx context.Context, customerID, profileID string, paymentProfileIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := c.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.tx.ExecContext(ctx, `
		INSERT INTO customer_profiles (customer_id, profile_id, created_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE
		profile_id = VALUES(profile_id)
	`, customerID, profileID)
	if err != nil {
		return fmt.Errorf("error saving customer profile: %w", err)
	}

	for _, id := range paymentProfileIDs {
		if err := tx.savePaymentProfile(ctx, profileID, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit customer profile: %w", err)
	}

	c.logger.Info("Saved customer profile",
		zap.String("customer_id", customerID),
		zap.String("profile_id", profileID),
		zap.Int("payment_profiles", len(paymentProfileIDs)),
	)
	return nil
}

func (t *Transaction) savePaymentProfile(ctx context.Context, profileID, paymentProfileID string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT IGNORE INTO customer_payment_profiles (profile_id, payment_profile_id, created_at)
		VALUES (?, ?, NOW())
	`, profileID, paymentProfileID)
	if err != nil {
		return fmt.Errorf("error saving payment profile: %w", err)
	}
	return nil
}

func (c *Connection) SavePaymentProfile(ctx context.Context, profileID, paymentProfileID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
		INSERT IGNORE INTO customer_payment_profiles (profile_id, payment_profile_id, created_at)
		VALUES (?, ?, NOW())
	`, profileID, paymentProfileID)
	if err != nil {
		return fmt.Errorf("error saving payment profile: %w", err)
	}
	return nil
}

func (c *Connection) DeletePaymentProfile(ctx context.Context, profileID, paymentProfileID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
		DELETE FROM customer_payment_profiles
		WHERE profile_id = ? AND payment_profile_id = ?
	`, profileID, paymentProfileID)
	if err != nil {
		return fmt.Errorf("error deleting payment profile: %w", err)
	}
	return nil
}

// GetCustomerProfile looks up the gateway profile stored for customerID.
func (c *Connection) GetCustomerProfile(ctx context.Context, customerID string) (*CustomerProfileData, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var profile CustomerProfileData
	err := c.db.QueryRowContext(ctx, `
		SELECT customer_id, profile_id, created_at
		FROM customer_profiles
		WHERE customer_id = ?
	`, customerID).Scan(&profile.CustomerID, &profile.ProfileID, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting customer profile: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT payment_profile_id
		FROM customer_payment_profiles
		WHERE profile_id = ?
		ORDER BY created_at ASC
	`, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("error listing payment profiles: %w", err)
	}
	defer rows.Close()

	profile.PaymentProfileIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		profile.PaymentProfileIDs = append(profile.PaymentProfileIDs, id)
	}

	return &profile, rows.Err()
}
