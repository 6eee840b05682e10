package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pictoria/pictoria/internal/model"
)

// Common errors for payment repository operations.
var (
	ErrPaymentNotFound = errors.New("payment not found")
)

// UpsertPayment records a payment event keyed by gateway order ID.
// Webhooks and client-side verification can both report the same order;
// the later write wins so replays are harmless.
func (r *Repository) UpsertPayment(ctx context.Context, p *model.PaymentRecord) error {
	query := `
		INSERT INTO billing_payments (id, user_id, email, order_id, payment_id, plan_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_id) DO UPDATE
		SET payment_id = EXCLUDED.payment_id,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Email,
		p.OrderID,
		p.PaymentID,
		p.PlanID,
		p.Amount,
		p.Currency,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	return nil
}

// GetPaymentByOrderID retrieves a payment by gateway order ID.
func (r *Repository) GetPaymentByOrderID(ctx context.Context, orderID string) (*model.PaymentRecord, error) {
	query := `
		SELECT id, user_id, email, order_id, payment_id, plan_id, amount, currency, status, created_at, updated_at
		FROM billing_payments
		WHERE order_id = $1
	`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by order ID: %w", err)
	}

	return p, nil
}

// ListPaymentsByUserID retrieves a user's payment history, newest first.
func (r *Repository) ListPaymentsByUserID(ctx context.Context, userID string) ([]*model.PaymentRecord, error) {
	query := `
		SELECT id, user_id, email, order_id, payment_id, plan_id, amount, currency, status, created_at, updated_at
		FROM billing_payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.PaymentRecord
	for rows.Next() {
		var p model.PaymentRecord
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Email,
			&p.OrderID,
			&p.PaymentID,
			&p.PlanID,
			&p.Amount,
			&p.Currency,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// scanPayment scans a single row into a PaymentRecord.
func scanPayment(row pgx.Row) (*model.PaymentRecord, error) {
	var p model.PaymentRecord
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Email,
		&p.OrderID,
		&p.PaymentID,
		&p.PlanID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
