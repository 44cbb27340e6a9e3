package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPaymentSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 123456,
			"status":             "approved",
			"transaction_amount": 60.0,
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	payment, err := client.GetPayment(context.Background(), "123456")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPath != "/v1/payments/123456" {
		t.Fatalf("path = %q", gotPath)
	}
	// Numeric gateway ids normalize to strings.
	if payment.ID != "123456" {
		t.Fatalf("id = %q, want 123456", payment.ID)
	}
	if !payment.Approved() {
		t.Fatal("expected approved payment")
	}
	if payment.TransactionAmount != 60 {
		t.Fatalf("amount = %v, want 60", payment.TransactionAmount)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GetPayment(context.Background(), "missing"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestGetPaymentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetPayment(context.Background(), "pay-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", fetchErr.StatusCode)
	}
}

func TestGetPaymentMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetPayment(context.Background(), "pay-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
}

func TestGetPaymentValidatesInput(t *testing.T) {
	client, err := NewClient("http://gateway.local", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GetPayment(context.Background(), ""); !errors.Is(err, ErrEmptyPaymentID) {
		t.Fatalf("err = %v, want ErrEmptyPaymentID", err)
	}
	if _, err := NewClient("", ""); !errors.Is(err, ErrEmptyBaseURL) {
		t.Fatalf("err = %v, want ErrEmptyBaseURL", err)
	}
}

func TestCreatePaymentPostsBody(t *testing.T) {
	var gotBody CreatePaymentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "789",
			"status": "pending",
			"point_of_interaction": map[string]any{
				"transaction_data": map[string]any{
					"qr_code":        "qr-data",
					"qr_code_base64": "cXItZGF0YQ==",
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		TransactionAmount: 60,
		Description:       "Platform fees",
		PaymentMethodID:   "pix",
		Payer:             Payer{Email: "partner@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if gotBody.PaymentMethodID != "pix" || gotBody.TransactionAmount != 60 {
		t.Fatalf("request body = %+v", gotBody)
	}
	if payment.ID != "789" {
		t.Fatalf("id = %q, want 789", payment.ID)
	}
	if payment.PointOfInteraction.TransactionData.QRCode != "qr-data" {
		t.Fatalf("qr code = %q", payment.PointOfInteraction.TransactionData.QRCode)
	}
}
