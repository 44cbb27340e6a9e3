package billing

import "errors"

var (
	// ErrEmptyPartnerID is returned when a partner id is empty.
	ErrEmptyPartnerID = errors.New("billing: empty partner id")
	// ErrInvalidWindow is returned when a window has zero or inverted bounds.
	ErrInvalidWindow = errors.New("billing: invalid accrual window")
	// ErrNilInvoice is returned when persisting a nil invoice.
	ErrNilInvoice = errors.New("billing: nil invoice")
	// ErrInvoiceNotFound is returned when an invoice lookup matches nothing.
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	// ErrInvoiceNotPending protects the status state machine: only pending
	// invoices accept a payment registration.
	ErrInvoiceNotPending = errors.New("billing: invoice is not pending")
	// ErrNoPaymentRegistered is returned when a sync is requested for an
	// invoice that has no gateway payment attached.
	ErrNoPaymentRegistered = errors.New("billing: no payment registered")
	// ErrPendingInvoiceOpen is returned when a settlement batch would give a
	// partner a second pending invoice.
	ErrPendingInvoiceOpen = errors.New("billing: partner already has a pending invoice")
	// ErrFeeAlreadySettled is returned when a settlement batch touches a fee
	// that was consumed by an earlier invoice.
	ErrFeeAlreadySettled = errors.New("billing: fee already settled")
	// ErrNoFees is returned when an invoice would be created with no fees.
	ErrNoFees = errors.New("billing: no fees in window")
)
