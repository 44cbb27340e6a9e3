package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/gateway"
	"marketplace-cloud/internal/observability/metrics"
	payments "marketplace-cloud/internal/payments/application"
)

const eventTypePayment = "payment"

// WebhookPayload is the gateway notification body. Additional gateway
// metadata (action, live_mode, timestamps) is ignored.
type WebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID gateway.PaymentID `json:"id"`
	} `json:"data"`
}

// WebhookHandler receives asynchronous payment notifications. Every
// understood event is acknowledged with a terminal status so the gateway
// stops redelivering; only unexpected processing failures return 5xx.
type WebhookHandler struct {
	reconciler *payments.ReconcileService
	logger     *log.Logger
}

// NewWebhookHandler constructs a handler.
func NewWebhookHandler(reconciler *payments.ReconcileService, logger *log.Logger) (*WebhookHandler, error) {
	if reconciler == nil {
		return nil, errors.New("webhook handler: nil reconcile service")
	}
	return &WebhookHandler{reconciler: reconciler, logger: logger}, nil
}

// ServeHTTP handles POST /webhooks/payments.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.ObserveWebhook(metrics.WebhookOutcomeError, time.Since(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if payload.Type != eventTypePayment {
		metrics.ObserveWebhook(metrics.WebhookOutcomeIgnored, time.Since(start))
		h.respond(w, http.StatusOK, "ignored: not a payment event")
		return
	}

	outcome, inv, err := h.reconciler.ReconcilePayment(r.Context(), string(payload.Data.ID))
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			// Orphaned or misdelivered webhook; surfaced for investigation
			// instead of masked with a success ack.
			metrics.ObserveWebhook(metrics.WebhookOutcomeNotFound, time.Since(start))
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		metrics.ObserveWebhook(metrics.WebhookOutcomeError, time.Since(start))
		if h.logger != nil {
			h.logger.Printf("payment webhook: payment=%s err=%v", payload.Data.ID, err)
		}
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	switch outcome {
	case payments.OutcomePaid:
		metrics.ObserveWebhook(metrics.WebhookOutcomePaid, time.Since(start))
		if h.logger != nil {
			h.logger.Printf("payment webhook: invoice=%s partner=%s paid", inv.ID, inv.PartnerID)
		}
		h.respond(w, http.StatusOK, "invoice paid")
	case payments.OutcomeAlreadyPaid:
		metrics.ObserveWebhook(metrics.WebhookOutcomePaid, time.Since(start))
		h.respond(w, http.StatusOK, "invoice already paid")
	default:
		metrics.ObserveWebhook(metrics.WebhookOutcomeNoop, time.Since(start))
		h.respond(w, http.StatusOK, "acknowledged")
	}
}

func (h *WebhookHandler) respond(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
