package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier posts payment notifications to a webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyPaymentReceived sends a payment notification to the webhook.
func (n *WebhookNotifier) NotifyPaymentReceived(ctx context.Context, msg PaymentReceived) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatPaymentReceived(msg)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatPaymentReceived(msg PaymentReceived) string {
	var b strings.Builder
	b.WriteString("[Invoice Paid]\n")
	if msg.PartnerID != "" {
		fmt.Fprintf(&b, "Partner: %s\n", msg.PartnerID)
	}
	if msg.InvoiceID != "" {
		fmt.Fprintf(&b, "Invoice: %s\n", msg.InvoiceID)
	}
	if msg.PaymentID != "" {
		fmt.Fprintf(&b, "Payment: %s\n", msg.PaymentID)
	}
	fmt.Fprintf(&b, "Amount: %.2f\n", msg.TotalAmount)
	if !msg.PaidAt.IsZero() {
		fmt.Fprintf(&b, "Paid At: %s\n", msg.PaidAt.Format(time.RFC3339))
	}
	return strings.TrimSpace(b.String())
}
