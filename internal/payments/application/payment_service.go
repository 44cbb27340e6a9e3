package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/gateway"
	"marketplace-cloud/internal/observability/metrics"
)

// ErrUnsupportedMethod is returned for payment methods the gateway cannot
// produce.
var ErrUnsupportedMethod = errors.New("payments: unsupported payment method")

// RegisterPaymentRequest asks for a gateway payment against an invoice.
type RegisterPaymentRequest struct {
	InvoiceID string
	Method    billing.PaymentMethod
	Payer     gateway.Payer
}

// PaymentService creates gateway payments for pending invoices and stores
// the correlation the webhook reconciler later resolves.
type PaymentService struct {
	invoices billing.InvoiceRepository
	gateway  GatewayClient
}

// NewPaymentService constructs the service.
func NewPaymentService(invoices billing.InvoiceRepository, gatewayClient GatewayClient) (*PaymentService, error) {
	if invoices == nil {
		return nil, errors.New("payment service: nil invoice repository")
	}
	if gatewayClient == nil {
		return nil, errors.New("payment service: nil gateway client")
	}
	return &PaymentService{invoices: invoices, gateway: gatewayClient}, nil
}

// RegisterPayment creates a pix or boleto payment at the gateway for a
// pending invoice and persists the returned payment id and artifacts.
// Re-registering replaces the previous correlation while the invoice is
// still unpaid.
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*billing.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != billing.InvoiceStatusPending {
		return nil, billing.ErrInvoiceNotPending
	}

	methodID, err := gatewayMethodID(req.Method)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payment, err := s.gateway.CreatePayment(ctx, gateway.CreatePaymentRequest{
		TransactionAmount: inv.TotalAmount,
		Description:       paymentDescription(inv),
		PaymentMethodID:   methodID,
		Payer:             req.Payer,
	})
	if err != nil {
		metrics.ObserveGatewayRequest("create_payment", metrics.ResultError, time.Since(start))
		return nil, err
	}
	metrics.ObserveGatewayRequest("create_payment", metrics.ResultSuccess, time.Since(start))

	attachment := billing.PaymentAttachment{
		PaymentID: string(payment.ID),
		Method:    req.Method,
		Data: &billing.PaymentData{
			QRCode:       payment.PointOfInteraction.TransactionData.QRCode,
			QRCodeBase64: payment.PointOfInteraction.TransactionData.QRCodeBase64,
			TicketURL:    payment.TicketURL(),
		},
	}
	if err := s.invoices.AttachPayment(ctx, inv.ID, attachment); err != nil {
		return nil, err
	}

	inv.PaymentID = attachment.PaymentID
	inv.PaymentMethod = attachment.Method
	inv.PaymentData = attachment.Data
	return inv, nil
}

func gatewayMethodID(method billing.PaymentMethod) (string, error) {
	switch method {
	case billing.PaymentMethodPix:
		return "pix", nil
	case billing.PaymentMethodBoleto:
		return "bolbradesco", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

func paymentDescription(inv *billing.Invoice) string {
	return fmt.Sprintf("Platform fees %s to %s",
		inv.StartDate.Format("2006-01-02"), inv.EndDate.Format("2006-01-02"))
}
