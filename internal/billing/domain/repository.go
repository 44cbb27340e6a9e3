package billing

import (
	"context"
	"time"
)

// FeeRepository reads a partner's accrued fee ledger.
type FeeRepository interface {
	// ListUnsettled returns the partner's unsettled fees created inside the
	// inclusive [window.Start, window.End] range.
	ListUnsettled(ctx context.Context, partnerID string, window AccrualWindow) ([]Fee, error)
}

// PaymentAttachment is the gateway correlation persisted on an invoice when
// a payment is registered.
type PaymentAttachment struct {
	PaymentID string
	Method    PaymentMethod
	Data      *PaymentData
}

// InvoiceRepository persists invoices and their settlement batches.
type InvoiceRepository interface {
	// FindLatestByPartner returns the partner's most recent invoice by
	// creation time, or nil when the partner has no invoice history.
	FindLatestByPartner(ctx context.Context, partnerID string) (*Invoice, error)

	// CreateSettlingFees persists the invoice and flips every listed fee to
	// settled in one atomic batch. If any fee was already settled the whole
	// batch is rolled back and ErrFeeAlreadySettled is returned.
	CreateSettlingFees(ctx context.Context, inv *Invoice, feeIDs []string) error

	// FindByID fetches one invoice. Returns ErrInvoiceNotFound when absent.
	FindByID(ctx context.Context, id string) (*Invoice, error)

	// FindByPaymentID resolves a gateway payment id to its invoice across
	// all partners. Returns ErrInvoiceNotFound when no invoice carries it.
	FindByPaymentID(ctx context.Context, paymentID string) (*Invoice, error)

	// ListByPartner returns a partner's invoices, newest first.
	ListByPartner(ctx context.Context, partnerID string) ([]Invoice, error)

	// AttachPayment stores the gateway correlation on a pending invoice.
	// Returns ErrInvoiceNotPending when the invoice is absent or already
	// settled.
	AttachPayment(ctx context.Context, invoiceID string, payment PaymentAttachment) error

	// MarkPaid transitions pending -> paid. The update is conditional on the
	// current status, so a duplicate call matches nothing and reports
	// updated=false without touching the stored PaidAt.
	MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) (updated bool, err error)

	// ListFees returns the fees consumed by an invoice, for statements.
	ListFees(ctx context.Context, invoiceID string) ([]Fee, error)
}
