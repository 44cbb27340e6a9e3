package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace-cloud/internal/audit"
	"marketplace-cloud/internal/billing/application"
)

// RunHandler triggers a billing run on demand and returns its summary.
type RunHandler struct {
	service     *application.BillingRunService
	auditLogger audit.Logger
}

// NewRunHandler constructs a handler. auditLogger may be nil.
func NewRunHandler(service *application.BillingRunService, auditLogger audit.Logger) (*RunHandler, error) {
	if service == nil {
		return nil, errors.New("run handler: nil billing run service")
	}
	return &RunHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/billing/run.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summary, err := h.service.RunOnce(r.Context())
	if err != nil {
		http.Error(w, "billing run failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
	if h.auditLogger != nil {
		raw, marshalErr := json.Marshal(summary)
		if marshalErr != nil {
			raw = nil
		}
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        r.Header.Get("X-Actor"),
			Action:       "billing.run",
			ResourceType: "billing_run",
			Metadata:     raw,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}
