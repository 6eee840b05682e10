// Pictoria Webhook Simulator
//
// Signs a gateway-style payment event and posts it to a running
// Pictoria server, for testing webhook handling locally without a
// real Razorpay account.
//
// Usage:
//   export RAZORPAY_WEBHOOK_SECRET="whsec_your_secret_here"
//   go run main.go -order order_ABC123 -payment pay_XYZ789
//   go run main.go -order order_ABC123 -payment pay_XYZ789 -event payment.failed

package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
)

type webhookEvent struct {
	Event   string  `json:"event"`
	Payload payload `json:"payload"`
}

type payload struct {
	Payment paymentWrapper `json:"payment"`
}

type paymentWrapper struct {
	Entity paymentEntity `json:"entity"`
}

type paymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func main() {
	var (
		target    = flag.String("target", "http://localhost:8080/api/v1/billing/webhook", "Webhook endpoint URL")
		event     = flag.String("event", "payment.captured", "Event type: payment.captured or payment.failed")
		orderID   = flag.String("order", "", "Gateway order ID (required)")
		paymentID = flag.String("payment", "", "Gateway payment ID (required)")
	)
	flag.Parse()

	secret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("RAZORPAY_WEBHOOK_SECRET environment variable is required")
	}
	if *orderID == "" || *paymentID == "" {
		log.Fatal("-order and -payment are required")
	}

	status := "captured"
	if *event == "payment.failed" {
		status = "failed"
	}

	body, err := json.Marshal(webhookEvent{
		Event: *event,
		Payload: payload{
			Payment: paymentWrapper{
				Entity: paymentEntity{
					ID:      *paymentID,
					OrderID: *orderID,
					Status:  status,
				},
			},
		},
	})
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	// The signature covers the exact bytes sent on the wire.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signature)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("send webhook: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log.Printf("✓ Sent %s for %s", *event, *orderID)
	log.Printf("  Status: %s", resp.Status)
	if len(respBody) > 0 {
		log.Printf("  Body:   %s", respBody)
	}
}
