package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pictoria/pictoria/internal/auth"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/model"
	"github.com/pictoria/pictoria/internal/payment"
	"github.com/pictoria/pictoria/internal/repository"
)

// maxWebhookBodySize bounds webhook payloads. Gateway events are small;
// anything larger is not a legitimate event.
const maxWebhookBodySize = 1 << 20

// PaymentHandler handles billing endpoints: plans, order creation,
// checkout verification, webhooks, and invoice history.
type PaymentHandler struct {
	logger        *slog.Logger
	repo          *repository.Repository
	gateway       *payment.Client
	keySecret     string
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(logger *slog.Logger, repo *repository.Repository, gateway *payment.Client, keySecret, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		logger:        logger.With("component", "handler.payment"),
		repo:          repo,
		gateway:       gateway,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// ListPlans handles GET /v1/billing/plans.
func (h *PaymentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]model.Plan{"plans": payment.Plans})
}

// CreateOrder handles POST /v1/billing/orders.
// Creates a gateway order for the requested plan and records it with
// status "created" so verification and webhooks have a row to update.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.MustAuthFromContext(ctx)

	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	plan, ok := payment.PlanByID(req.PlanID)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "INVALID_PLAN", "Unknown plan ID")
		return
	}

	order, err := h.gateway.CreateOrder(ctx, plan, authCtx.UserID)
	if err != nil {
		h.logger.Error("failed to create gateway order", "user_id", authCtx.UserID, "plan_id", plan.ID, "error", err)
		h.writeError(w, http.StatusBadGateway, "GATEWAY_ERROR", "Failed to create payment order")
		return
	}

	now := time.Now().UTC()
	record := &model.PaymentRecord{
		ID:        ulid.Make().String(),
		OrderID:   order.OrderID,
		UserID:    authCtx.UserID,
		Email:     authCtx.Email,
		PlanID:    plan.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    model.PaymentStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.UpsertPayment(ctx, record); err != nil {
		h.logger.Error("failed to record order", "order_id", order.OrderID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment order")
		return
	}

	h.logger.Info("payment order created", "user_id", authCtx.UserID, "order_id", order.OrderID, "plan_id", plan.ID)
	writeJSON(w, http.StatusCreated, order)
}

// VerifyCheckout handles POST /v1/billing/verify.
// The client posts the order ID, payment ID, and signature the gateway
// handed it after checkout. A valid signature marks the order paid.
func (h *PaymentHandler) VerifyCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "order, payment, and signature are required")
		return
	}

	if err := payment.VerifyCheckout(h.keySecret, req.OrderID, req.PaymentID, req.Signature); err != nil {
		h.logger.Warn("checkout signature verification failed", "user_id", userID, "order_id", req.OrderID)
		h.writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Payment signature verification failed")
		return
	}

	record, err := h.repo.GetPaymentByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			h.writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Unknown payment order")
			return
		}
		h.logger.Error("failed to load payment", "order_id", req.OrderID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify payment")
		return
	}
	if record.UserID != userID {
		// Do not reveal that the order exists for another account.
		h.writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Unknown payment order")
		return
	}

	record.PaymentID = req.PaymentID
	record.Status = model.PaymentStatusPaid
	record.UpdatedAt = time.Now().UTC()
	if err := h.repo.UpsertPayment(ctx, record); err != nil {
		h.logger.Error("failed to record verified payment", "order_id", req.OrderID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		return
	}

	h.logger.Info("payment verified", "user_id", userID, "order_id", req.OrderID, "payment_id", req.PaymentID)
	writeJSON(w, http.StatusOK, toInvoice(record))
}

// webhookEvent is the gateway's webhook envelope, reduced to the
// fields the handler acts on.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook handles POST /v1/billing/webhook.
// The signature is computed over the raw body, so the body must be read
// before any JSON decoding. Unknown event types are acknowledged and
// ignored so the gateway does not retry them.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := payment.VerifyWebhookBody(h.webhookSecret, body, signature); err != nil {
		h.logger.Warn("webhook signature verification failed", "remote_addr", r.RemoteAddr)
		h.writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature verification failed")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid webhook payload")
		return
	}

	var status string
	switch event.Event {
	case "payment.captured":
		status = model.PaymentStatusPaid
	case "payment.failed":
		status = model.PaymentStatusFailed
	default:
		h.logger.Debug("ignoring webhook event", "event", event.Event)
		w.WriteHeader(http.StatusOK)
		return
	}

	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Webhook payload missing order ID")
		return
	}

	record, err := h.repo.GetPaymentByOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			// An order this service never created. Acknowledge so the
			// gateway stops retrying, but log it.
			h.logger.Warn("webhook for unknown order", "order_id", entity.OrderID, "event", event.Event)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Error("failed to load payment for webhook", "order_id", entity.OrderID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook")
		return
	}

	record.PaymentID = entity.ID
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	if err := h.repo.UpsertPayment(ctx, record); err != nil {
		h.logger.Error("failed to record webhook payment", "order_id", entity.OrderID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook")
		return
	}

	h.logger.Info("webhook processed", "order_id", entity.OrderID, "event", event.Event, "status", status)
	w.WriteHeader(http.StatusOK)
}

// ListInvoices handles GET /v1/billing/invoices.
func (h *PaymentHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	payments, err := h.repo.ListPaymentsByUserID(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list payments", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list invoices")
		return
	}

	invoices := make([]model.Invoice, 0, len(payments))
	for _, p := range payments {
		invoices = append(invoices, toInvoice(p))
	}

	writeJSON(w, http.StatusOK, map[string][]model.Invoice{"invoices": invoices})
}

// toInvoice renders a payment record as an invoice line.
func toInvoice(p *model.PaymentRecord) model.Invoice {
	return model.Invoice{
		Date:      p.UpdatedAt,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		PlanID:    p.PlanID,
	}
}

// writeError writes a JSON error response.
func (h *PaymentHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
