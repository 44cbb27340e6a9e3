package application

import (
	"context"
	"errors"
	"testing"
	"time"

	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/billing/infrastructure/memory"
	"marketplace-cloud/internal/gateway"
)

type artifactGateway struct{}

func (artifactGateway) GetPayment(_ context.Context, _ string) (gateway.Payment, error) {
	return gateway.Payment{}, gateway.ErrPaymentNotFound
}

func (artifactGateway) CreatePayment(_ context.Context, req gateway.CreatePaymentRequest) (gateway.Payment, error) {
	return gateway.Payment{
		ID:                "PAY777",
		Status:            "pending",
		TransactionAmount: req.TransactionAmount,
		PointOfInteraction: gateway.PointOfInteraction{
			TransactionData: gateway.TransactionData{
				QRCode:       "qr-payload",
				QRCodeBase64: "cXItcGF5bG9hZA==",
			},
		},
	}, nil
}

func TestRegisterPaymentAttachesCorrelation(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	inv := pendingInvoice(now)
	inv.PaymentID = ""
	store.AddInvoice(inv)

	service, err := NewPaymentService(store, artifactGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		InvoiceID: "inv-1",
		Method:    billing.PaymentMethodPix,
		Payer:     gateway.Payer{Email: "partner@example.com"},
	})
	if err != nil {
		t.Fatalf("register payment: %v", err)
	}
	if result.PaymentID != "PAY777" {
		t.Fatalf("payment id = %q, want PAY777", result.PaymentID)
	}
	if result.PaymentMethod != billing.PaymentMethodPix {
		t.Fatalf("method = %s, want pix", result.PaymentMethod)
	}
	if result.PaymentData == nil || result.PaymentData.QRCode != "qr-payload" {
		t.Fatalf("payment data = %+v", result.PaymentData)
	}

	stored, _ := store.Invoice("inv-1")
	if stored.PaymentID != "PAY777" {
		t.Fatalf("stored payment id = %q", stored.PaymentID)
	}
}

func TestRegisterPaymentRejectsPaidInvoice(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	inv := pendingInvoice(now)
	inv.Status = billing.InvoiceStatusPaid
	store.AddInvoice(inv)

	service, err := NewPaymentService(store, artifactGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		InvoiceID: "inv-1",
		Method:    billing.PaymentMethodPix,
	})
	if !errors.Is(err, billing.ErrInvoiceNotPending) {
		t.Fatalf("err = %v, want ErrInvoiceNotPending", err)
	}
}

func TestRegisterPaymentRejectsUnknownMethod(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	inv := pendingInvoice(now)
	inv.PaymentID = ""
	store.AddInvoice(inv)

	service, err := NewPaymentService(store, artifactGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		InvoiceID: "inv-1",
		Method:    billing.PaymentMethod("credit_card"),
	})
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
}
