package notify

import (
	"context"
	"time"
)

// PaymentReceived describes an invoice that just reached paid.
type PaymentReceived struct {
	PartnerID   string
	InvoiceID   string
	PaymentID   string
	TotalAmount float64
	PaidAt      time.Time
}

// Notifier delivers payment notifications to an external channel. Delivery
// is fire-and-forget: the billing core logs failures and moves on.
type Notifier interface {
	NotifyPaymentReceived(ctx context.Context, msg PaymentReceived) error
}
