package model

import "time"

// Payment status values as reported by the gateway.
const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Plan describes a purchasable subscription plan.
// Amount is in the smallest currency unit.
type Plan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// PaymentOrder is the gateway's order representation returned to the
// client for checkout handoff.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	PlanID   string `json:"plan_id"`
}

// PaymentRecord is a billing_payments row. Rows are keyed by order ID
// and upserted as the payment moves through its lifecycle.
type PaymentRecord struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	PlanID    string    `json:"plan_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invoice summarizes a verified payment for the caller.
type Invoice struct {
	Date      time.Time `json:"date"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	PlanID    string    `json:"plan_id"`
}
