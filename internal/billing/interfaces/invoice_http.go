package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"marketplace-cloud/internal/audit"
	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/gateway"
	payments "marketplace-cloud/internal/payments/application"
)

// InvoiceHandler serves the partner invoice API under /api/v1/invoices.
type InvoiceHandler struct {
	invoices    billing.InvoiceRepository
	payments    *payments.PaymentService
	reconciler  *payments.ReconcileService
	auditLogger audit.Logger
}

// NewInvoiceHandler constructs a handler. auditLogger may be nil.
func NewInvoiceHandler(
	invoices billing.InvoiceRepository,
	paymentService *payments.PaymentService,
	reconciler *payments.ReconcileService,
	auditLogger audit.Logger,
) (*InvoiceHandler, error) {
	if invoices == nil {
		return nil, errors.New("invoice handler: nil invoice repository")
	}
	if paymentService == nil {
		return nil, errors.New("invoice handler: nil payment service")
	}
	if reconciler == nil {
		return nil, errors.New("invoice handler: nil reconcile service")
	}
	return &InvoiceHandler{
		invoices:    invoices,
		payments:    paymentService,
		reconciler:  reconciler,
		auditLogger: auditLogger,
	}, nil
}

// ServeHTTP routes invoice requests.
func (h *InvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/invoices" && r.Method == http.MethodGet {
		h.handleList(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/invoices/") {
		rest := strings.TrimPrefix(path, "/api/v1/invoices/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *InvoiceHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "payments":
			if r.Method == http.MethodPost {
				h.handleRegisterPayment(w, r, id)
				return
			}
		case "sync":
			if r.Method == http.MethodPost {
				h.handleSync(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExportPDF(w, r, id)
				return
			}
		case "export.xlsx":
			if r.Method == http.MethodGet {
				h.handleExportXLSX(w, r, id)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	partnerID := r.URL.Query().Get("partner_id")
	if partnerID == "" {
		http.Error(w, "partner_id required", http.StatusBadRequest)
		return
	}
	list, err := h.invoices.ListByPartner(r.Context(), partnerID)
	if err != nil {
		respondError(w, err)
		return
	}
	payload := make([]invoiceResponse, 0, len(list))
	for i := range list {
		payload = append(payload, toInvoiceResponse(&list[i]))
	}
	writeJSON(w, payload)
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.invoices.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, toInvoiceResponse(inv))
}

func (h *InvoiceHandler) handleRegisterPayment(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Method string `json:"method"`
		Payer  struct {
			Email                string `json:"email"`
			FirstName            string `json:"first_name"`
			LastName             string `json:"last_name"`
			IdentificationType   string `json:"identification_type"`
			IdentificationNumber string `json:"identification_number"`
		} `json:"payer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	payer := gateway.Payer{
		Email:     req.Payer.Email,
		FirstName: req.Payer.FirstName,
		LastName:  req.Payer.LastName,
	}
	if req.Payer.IdentificationNumber != "" {
		payer.Identification = &gateway.Identification{
			Type:   req.Payer.IdentificationType,
			Number: req.Payer.IdentificationNumber,
		}
	}
	inv, err := h.payments.RegisterPayment(r.Context(), payments.RegisterPaymentRequest{
		InvoiceID: id,
		Method:    billing.PaymentMethod(req.Method),
		Payer:     payer,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, toInvoiceResponse(inv))
	h.logAudit(r, inv.PartnerID, inv.ID, "invoice.payment.register", map[string]any{
		"method":     req.Method,
		"payment_id": inv.PaymentID,
	})
}

func (h *InvoiceHandler) handleSync(w http.ResponseWriter, r *http.Request, id string) {
	outcome, inv, err := h.reconciler.SyncPayment(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"outcome": outcome,
		"invoice": toInvoiceResponse(inv),
	})
	h.logAudit(r, inv.PartnerID, inv.ID, "invoice.payment.sync", map[string]any{
		"outcome": string(outcome),
	})
}

func (h *InvoiceHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	inv, fees, err := h.loadWithFees(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := BuildInvoicePDF(inv, fees)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+inv.ID+`.pdf"`)
	_, _ = w.Write(data)
}

func (h *InvoiceHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request, id string) {
	inv, fees, err := h.loadWithFees(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := BuildInvoiceXLSX(inv, fees)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+inv.ID+`.xlsx"`)
	_, _ = w.Write(data)
}

func (h *InvoiceHandler) loadWithFees(r *http.Request, id string) (*billing.Invoice, []billing.Fee, error) {
	inv, err := h.invoices.FindByID(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	fees, err := h.invoices.ListFees(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	return inv, fees, nil
}

func (h *InvoiceHandler) logAudit(r *http.Request, partnerID, invoiceID, action string, metadata map[string]any) {
	if h.auditLogger == nil {
		return
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		raw = nil
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        r.Header.Get("X-Actor"),
		Action:       action,
		ResourceType: "invoice",
		ResourceID:   invoiceID,
		PartnerID:    partnerID,
		Metadata:     raw,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type invoiceResponse struct {
	ID            string               `json:"id"`
	PartnerID     string               `json:"partner_id"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	CreatedAt     time.Time            `json:"created_at"`
	TotalAmount   float64              `json:"total_amount"`
	TotalOrders   int                  `json:"total_orders"`
	Status        string               `json:"status"`
	PaymentID     string               `json:"payment_id,omitempty"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	PaymentData   *billing.PaymentData `json:"payment_data,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
}

func toInvoiceResponse(inv *billing.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            inv.ID,
		PartnerID:     inv.PartnerID,
		StartDate:     inv.StartDate,
		EndDate:       inv.EndDate,
		CreatedAt:     inv.CreatedAt,
		TotalAmount:   inv.TotalAmount,
		TotalOrders:   inv.TotalOrders,
		Status:        string(inv.Status),
		PaymentID:     inv.PaymentID,
		PaymentMethod: string(inv.PaymentMethod),
		PaymentData:   inv.PaymentData,
	}
	if !inv.PaidAt.IsZero() {
		paidAt := inv.PaidAt
		resp.PaidAt = &paidAt
	}
	return resp
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrInvoiceNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
	case errors.Is(err, billing.ErrInvoiceNotPending),
		errors.Is(err, billing.ErrNoPaymentRegistered):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, payments.ErrUnsupportedMethod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
