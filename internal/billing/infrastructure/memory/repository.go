package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	billing "marketplace-cloud/internal/billing/domain"
)

// Store is an in-memory fee and invoice store. It backs application-service
// and handler tests with the same settlement semantics as the Postgres
// repositories, including all-or-nothing batches.
type Store struct {
	mu       sync.RWMutex
	fees     map[string]*billing.Fee // keyed partnerID+"|"+feeID
	invoices map[string]*billing.Invoice

	// FailCreateFor aborts CreateSettlingFees for the given partner id,
	// simulating a commit failure mid-run.
	FailCreateFor string
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		fees:     make(map[string]*billing.Fee),
		invoices: make(map[string]*billing.Invoice),
	}
}

func feeKey(partnerID, feeID string) string { return partnerID + "|" + feeID }

// AddFee seeds a fee.
func (s *Store) AddFee(fee billing.Fee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := fee
	s.fees[feeKey(fee.PartnerID, fee.ID)] = &copy
}

// AddInvoice seeds an invoice.
func (s *Store) AddInvoice(inv billing.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := inv
	s.invoices[inv.ID] = &copy
}

// Fee returns a seeded fee for assertions.
func (s *Store) Fee(partnerID, feeID string) (billing.Fee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fee, ok := s.fees[feeKey(partnerID, feeID)]
	if !ok {
		return billing.Fee{}, false
	}
	return *fee, true
}

// Invoice returns a stored invoice for assertions.
func (s *Store) Invoice(id string) (billing.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return billing.Invoice{}, false
	}
	return *inv, true
}

// ListUnsettled implements billing.FeeRepository.
func (s *Store) ListUnsettled(ctx context.Context, partnerID string, window billing.AccrualWindow) ([]billing.Fee, error) {
	_ = ctx
	if partnerID == "" {
		return nil, billing.ErrEmptyPartnerID
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []billing.Fee
	for _, fee := range s.fees {
		if fee.PartnerID != partnerID || fee.Settled {
			continue
		}
		if fee.CreatedAt.Before(window.Start) || fee.CreatedAt.After(window.End) {
			continue
		}
		result = append(result, *fee)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// FindLatestByPartner implements billing.InvoiceRepository.
func (s *Store) FindLatestByPartner(ctx context.Context, partnerID string) (*billing.Invoice, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *billing.Invoice
	for _, inv := range s.invoices {
		if inv.PartnerID != partnerID {
			continue
		}
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
			latest = inv
		}
	}
	if latest == nil {
		return nil, nil
	}
	copy := *latest
	return &copy, nil
}

// CreateSettlingFees implements billing.InvoiceRepository.
func (s *Store) CreateSettlingFees(ctx context.Context, inv *billing.Invoice, feeIDs []string) error {
	_ = ctx
	if inv == nil {
		return billing.ErrNilInvoice
	}
	if len(feeIDs) == 0 {
		return billing.ErrNoFees
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateFor != "" && inv.PartnerID == s.FailCreateFor {
		return errSimulatedCommit
	}
	// One open invoice per partner, matching the partial unique index on
	// the invoices table.
	for _, existing := range s.invoices {
		if existing.PartnerID == inv.PartnerID && existing.Status == billing.InvoiceStatusPending {
			return billing.ErrPendingInvoiceOpen
		}
	}
	// Validate the whole batch before mutating anything.
	for _, feeID := range feeIDs {
		fee, ok := s.fees[feeKey(inv.PartnerID, feeID)]
		if !ok || fee.Settled {
			return billing.ErrFeeAlreadySettled
		}
	}
	for _, feeID := range feeIDs {
		s.fees[feeKey(inv.PartnerID, feeID)].Settled = true
	}
	copy := *inv
	s.invoices[inv.ID] = &copy
	return nil
}

// FindByID implements billing.InvoiceRepository.
func (s *Store) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	copy := *inv
	return &copy, nil
}

// FindByPaymentID implements billing.InvoiceRepository.
func (s *Store) FindByPaymentID(ctx context.Context, paymentID string) (*billing.Invoice, error) {
	_ = ctx
	if paymentID == "" {
		return nil, billing.ErrInvoiceNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.PaymentID == paymentID {
			copy := *inv
			return &copy, nil
		}
	}
	return nil, billing.ErrInvoiceNotFound
}

// ListByPartner implements billing.InvoiceRepository.
func (s *Store) ListByPartner(ctx context.Context, partnerID string) ([]billing.Invoice, error) {
	_ = ctx
	if partnerID == "" {
		return nil, billing.ErrEmptyPartnerID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []billing.Invoice
	for _, inv := range s.invoices {
		if inv.PartnerID == partnerID {
			result = append(result, *inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// AttachPayment implements billing.InvoiceRepository.
func (s *Store) AttachPayment(ctx context.Context, invoiceID string, payment billing.PaymentAttachment) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok || inv.Status != billing.InvoiceStatusPending {
		return billing.ErrInvoiceNotPending
	}
	inv.PaymentID = payment.PaymentID
	inv.PaymentMethod = payment.Method
	if payment.Data != nil {
		data := *payment.Data
		inv.PaymentData = &data
	} else {
		inv.PaymentData = nil
	}
	return nil
}

// MarkPaid implements billing.InvoiceRepository.
func (s *Store) MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok || inv.Status != billing.InvoiceStatusPending {
		return false, nil
	}
	inv.Status = billing.InvoiceStatusPaid
	inv.PaidAt = paidAt
	return true, nil
}

// ListFees implements billing.InvoiceRepository. The memory store does not
// track the fee -> invoice link, so it returns the invoice's settled fees
// by partner and window.
func (s *Store) ListFees(ctx context.Context, invoiceID string) ([]billing.Fee, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	var result []billing.Fee
	for _, fee := range s.fees {
		if fee.PartnerID != inv.PartnerID || !fee.Settled {
			continue
		}
		if fee.CreatedAt.Before(inv.StartDate) || fee.CreatedAt.After(inv.EndDate) {
			continue
		}
		result = append(result, *fee)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

var errSimulatedCommit = simulatedCommitError{}

type simulatedCommitError struct{}

func (simulatedCommitError) Error() string { return "memory store: commit failed" }
