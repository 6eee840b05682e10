package payment

import (
	"testing"
)

func TestVerifyCheckout_Valid(t *testing.T) {
	t.Parallel()

	secret := "test_secret"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"

	sig := SignCheckout(secret, orderID, paymentID)

	if err := VerifyCheckout(secret, orderID, paymentID, sig); err != nil {
		t.Errorf("expected valid signature, got %v", err)
	}
}

func TestVerifyCheckout_Invalid(t *testing.T) {
	t.Parallel()

	secret := "test_secret"

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{
			name:      "wrong signature",
			orderID:   "order_ABC123",
			paymentID: "pay_XYZ789",
			signature: "deadbeef",
		},
		{
			name:      "signature for different order",
			orderID:   "order_ABC123",
			paymentID: "pay_XYZ789",
			signature: SignCheckout(secret, "order_OTHER", "pay_XYZ789"),
		},
		{
			name:      "signature for different payment",
			orderID:   "order_ABC123",
			paymentID: "pay_XYZ789",
			signature: SignCheckout(secret, "order_ABC123", "pay_OTHER"),
		},
		{
			name:      "signature with different secret",
			orderID:   "order_ABC123",
			paymentID: "pay_XYZ789",
			signature: SignCheckout("other_secret", "order_ABC123", "pay_XYZ789"),
		},
		{
			name:      "empty signature",
			orderID:   "order_ABC123",
			paymentID: "pay_XYZ789",
			signature: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := VerifyCheckout(secret, tt.orderID, tt.paymentID, tt.signature)
			if err != ErrInvalidSignature {
				t.Errorf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestVerifyCheckout_CanonicalSeparator(t *testing.T) {
	t.Parallel()

	// The canonical string joins order and payment with a pipe. Moving a
	// character across the boundary must change the signature.
	secret := "test_secret"
	a := SignCheckout(secret, "order_1", "2pay")
	b := SignCheckout(secret, "order_12", "pay")

	if a == b {
		t.Error("signatures should differ when the boundary moves")
	}
}

func TestVerifyWebhookBody_Valid(t *testing.T) {
	t.Parallel()

	secret := "whsec_test"
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_1","id":"pay_1"}}}}`)

	sig := SignWebhookBody(secret, body)

	if err := VerifyWebhookBody(secret, body, sig); err != nil {
		t.Errorf("expected valid signature, got %v", err)
	}
}

func TestVerifyWebhookBody_BodyTampered(t *testing.T) {
	t.Parallel()

	secret := "whsec_test"
	body := []byte(`{"event":"payment.captured"}`)
	sig := SignWebhookBody(secret, body)

	tampered := []byte(`{"event":"payment.failed"}`)
	if err := VerifyWebhookBody(secret, tampered, sig); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature for tampered body, got %v", err)
	}
}

func TestVerifyWebhookBody_ExactBytes(t *testing.T) {
	t.Parallel()

	// Re-serialized JSON with different whitespace is a different byte
	// sequence and must not verify.
	secret := "whsec_test"
	body := []byte(`{"a":1,"b":2}`)
	sig := SignWebhookBody(secret, body)

	reserialized := []byte(`{"a": 1, "b": 2}`)
	if err := VerifyWebhookBody(secret, reserialized, sig); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature for re-serialized body, got %v", err)
	}
}

func TestPlanByID(t *testing.T) {
	t.Parallel()

	plan, ok := PlanByID("pro-monthly")
	if !ok {
		t.Fatal("expected pro-monthly plan to exist")
	}
	if plan.Amount != 79900 || plan.Currency != "INR" {
		t.Errorf("unexpected plan: %+v", plan)
	}

	if _, ok := PlanByID("nonexistent"); ok {
		t.Error("expected lookup miss for unknown plan")
	}
}
