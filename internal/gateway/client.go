package gateway

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

const defaultTimeout = 10 * time.Second

// StatusApproved is the only gateway status that settles an invoice.
const StatusApproved = "approved"

var (
	// ErrPaymentNotFound is returned when the gateway does not know the id.
	ErrPaymentNotFound = errors.New("gateway: payment not found")
	// ErrEmptyBaseURL is returned when the client is built without a URL.
	ErrEmptyBaseURL = errors.New("gateway: empty base url")
	// ErrEmptyPaymentID is returned for lookups with no id.
	ErrEmptyPaymentID = errors.New("gateway: empty payment id")
)

// FetchError wraps transport, decode, and non-2xx failures so callers can
// distinguish a gateway fault from a data-integrity miss.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: http %d", e.StatusCode)
	}
	return "gateway: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// PaymentID tolerates the gateway's habit of sending ids as JSON numbers in
// API responses but strings in webhook payloads.
type PaymentID string

func (p *PaymentID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*p = PaymentID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*p = PaymentID(asNumber.String())
	return nil
}

// Payment is the authoritative gateway view of one payment.
type Payment struct {
	ID                 PaymentID          `json:"id"`
	Status             string             `json:"status"`
	StatusDetail       string             `json:"status_detail"`
	TransactionAmount  float64            `json:"transaction_amount"`
	PointOfInteraction PointOfInteraction `json:"point_of_interaction"`
	TransactionDetails TransactionDetails `json:"transaction_details"`
}

// TicketURL returns the boleto payment slip URL, wherever the gateway put it.
func (p Payment) TicketURL() string {
	if p.PointOfInteraction.TransactionData.TicketURL != "" {
		return p.PointOfInteraction.TransactionData.TicketURL
	}
	return p.TransactionDetails.ExternalResourceURL
}

// Approved reports whether the payment settles its invoice.
func (p Payment) Approved() bool { return p.Status == StatusApproved }

// PointOfInteraction carries the payment artifacts (QR code, ticket URL).
type PointOfInteraction struct {
	TransactionData TransactionData `json:"transaction_data"`
}

// TransactionDetails carries the boleto payment slip location.
type TransactionDetails struct {
	ExternalResourceURL string `json:"external_resource_url"`
}

// TransactionData is the nested artifact payload.
type TransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url,omitempty"`
}

// Payer identifies who pays. Boleto requires full identification.
type Payer struct {
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name,omitempty"`
	LastName       string          `json:"last_name,omitempty"`
	Identification *Identification `json:"identification,omitempty"`
}

// Identification is a tax document reference (e.g. CPF/CNPJ).
type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// CreatePaymentRequest is the gateway payment creation body.
type CreatePaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             Payer   `json:"payer"`
}

// Client is a minimal payment gateway REST client. It performs no retries;
// retry policy belongs to the caller.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs a gateway client with a bounded request timeout.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// GetPayment fetches the authoritative status of one payment.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	if paymentID == "" {
		return Payment{}, ErrEmptyPaymentID
	}
	var payment Payment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// CreatePayment creates a pix or boleto payment at the gateway.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments", req, &payment); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Err: err}
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &FetchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPaymentNotFound
	}
	if resp.StatusCode >= 300 {
		return &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return &FetchError{Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return nil
}
