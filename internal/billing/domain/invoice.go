package billing

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// PaymentMethod identifies how a partner chose to pay an invoice.
type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
)

// PaymentData carries the gateway artifacts the partner needs to complete
// a payment (pix QR code or boleto ticket).
type PaymentData struct {
	QRCode       string `json:"qr_code,omitempty"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
	TicketURL    string `json:"ticket_url,omitempty"`
}

// Invoice is one partner's billing statement for a closed accrual window.
// TotalAmount always equals the sum of the fees settled by the invoice's
// creation transaction; the status moves pending -> paid exactly once.
type Invoice struct {
	ID          string
	PartnerID   string
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	TotalAmount float64
	TotalOrders int

	Status InvoiceStatus

	PaymentID     string
	PaymentMethod PaymentMethod
	PaymentData   *PaymentData
	PaidAt        time.Time
}

// IsPaid reports whether the invoice reached its terminal paid state.
func (i *Invoice) IsPaid() bool {
	return i != nil && i.Status == InvoiceStatusPaid
}

// HasPayment reports whether a gateway payment is attached.
func (i *Invoice) HasPayment() bool {
	return i != nil && i.PaymentID != ""
}

// NewInvoice builds a pending invoice over a resolved window from the fee
// set it consumes.
func NewInvoice(id, partnerID string, window AccrualWindow, fees []Fee, now time.Time) (*Invoice, error) {
	if partnerID == "" {
		return nil, ErrEmptyPartnerID
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if len(fees) == 0 {
		return nil, ErrNoFees
	}
	var total float64
	for _, fee := range fees {
		total += fee.Value
	}
	return &Invoice{
		ID:          id,
		PartnerID:   partnerID,
		StartDate:   window.Start,
		EndDate:     window.End,
		CreatedAt:   now,
		TotalAmount: total,
		TotalOrders: len(fees),
		Status:      InvoiceStatusPending,
	}, nil
}
