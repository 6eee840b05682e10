// Package payment integrates the Razorpay gateway: order creation,
// checkout signature verification, and webhook signature verification.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
)

// SignCheckout computes the checkout signature for an order/payment
// pair. The canonical string format is: "{orderID}|{paymentID}".
func SignCheckout(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCheckout verifies the signature the gateway hands the client
// after checkout. Uses constant-time comparison.
func VerifyCheckout(secret, orderID, paymentID, signature string) error {
	expected := SignCheckout(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignWebhookBody computes the webhook signature over the raw request
// body. The body must be the exact bytes received, before any JSON
// decoding.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookBody verifies the X-Razorpay-Signature header value
// against the raw webhook body.
func VerifyWebhookBody(secret string, body []byte, signature string) error {
	expected := SignWebhookBody(secret, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
