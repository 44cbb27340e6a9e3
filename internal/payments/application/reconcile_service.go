package application

import (
	"context"
	"errors"
	"log"
	"time"

	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/gateway"
	"marketplace-cloud/internal/notify"
	"marketplace-cloud/internal/observability/metrics"
)

// GatewayClient is the slice of the payment gateway the payments use cases
// need.
type GatewayClient interface {
	GetPayment(ctx context.Context, paymentID string) (gateway.Payment, error)
	CreatePayment(ctx context.Context, req gateway.CreatePaymentRequest) (gateway.Payment, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Outcome classifies the result of a reconciliation attempt.
type Outcome string

const (
	// OutcomePaid means the invoice transitioned to paid now.
	OutcomePaid Outcome = "paid"
	// OutcomeAlreadyPaid means a duplicate delivery arrived after the
	// transition; nothing changed.
	OutcomeAlreadyPaid Outcome = "already_paid"
	// OutcomeNoop means the gateway status does not settle the invoice yet.
	OutcomeNoop Outcome = "noop"
)

// ReconcileService maps gateway payment state onto invoices. It serves both
// the asynchronous webhook path and the manual sync endpoint.
type ReconcileService struct {
	invoices billing.InvoiceRepository
	gateway  GatewayClient
	notifier notify.Notifier
	clock    Clock
	logger   *log.Logger
}

// NewReconcileService constructs the service. notifier may be nil.
func NewReconcileService(
	invoices billing.InvoiceRepository,
	gatewayClient GatewayClient,
	notifier notify.Notifier,
	clock Clock,
	logger *log.Logger,
) (*ReconcileService, error) {
	if invoices == nil {
		return nil, errors.New("reconcile service: nil invoice repository")
	}
	if gatewayClient == nil {
		return nil, errors.New("reconcile service: nil gateway client")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReconcileService{
		invoices: invoices,
		gateway:  gatewayClient,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}, nil
}

// ReconcilePayment fetches the authoritative gateway status for paymentID
// and applies it to the matching invoice. Returns
// billing.ErrInvoiceNotFound when no invoice carries the payment id; that
// case needs external investigation, not a retry.
func (s *ReconcileService) ReconcilePayment(ctx context.Context, paymentID string) (Outcome, *billing.Invoice, error) {
	start := time.Now()
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		metrics.ObserveGatewayRequest("get_payment", metrics.ResultError, time.Since(start))
		return "", nil, err
	}
	metrics.ObserveGatewayRequest("get_payment", metrics.ResultSuccess, time.Since(start))

	inv, err := s.invoices.FindByPaymentID(ctx, string(payment.ID))
	if err != nil {
		return "", nil, err
	}

	if !payment.Approved() {
		if s.logger != nil {
			s.logger.Printf("reconcile: payment=%s status=%s, leaving invoice %s untouched", payment.ID, payment.Status, inv.ID)
		}
		return OutcomeNoop, inv, nil
	}

	paidAt := s.clock.Now()
	updated, err := s.invoices.MarkPaid(ctx, inv.ID, paidAt)
	if err != nil {
		return "", nil, err
	}
	if !updated {
		// Duplicate delivery after the transition; the stored paid_at wins.
		return OutcomeAlreadyPaid, inv, nil
	}

	inv.Status = billing.InvoiceStatusPaid
	inv.PaidAt = paidAt
	s.notifyPaid(ctx, inv)
	return OutcomePaid, inv, nil
}

// SyncPayment re-checks the gateway for an invoice's registered payment and
// applies the same transition as the webhook path.
func (s *ReconcileService) SyncPayment(ctx context.Context, invoiceID string) (Outcome, *billing.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return "", nil, err
	}
	if !inv.HasPayment() {
		return "", nil, billing.ErrNoPaymentRegistered
	}
	if inv.IsPaid() {
		return OutcomeAlreadyPaid, inv, nil
	}
	return s.ReconcilePayment(ctx, inv.PaymentID)
}

func (s *ReconcileService) notifyPaid(ctx context.Context, inv *billing.Invoice) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyPaymentReceived(ctx, notify.PaymentReceived{
		PartnerID:   inv.PartnerID,
		InvoiceID:   inv.ID,
		PaymentID:   inv.PaymentID,
		TotalAmount: inv.TotalAmount,
		PaidAt:      inv.PaidAt,
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("reconcile: payment notification failed: invoice=%s err=%v", inv.ID, err)
	}
}
