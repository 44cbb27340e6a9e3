package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	partner "marketplace-cloud/internal/partner/domain"
)

// PartnerHandler serves the partner roster under /api/v1/partners.
type PartnerHandler struct {
	partners partner.Repository
}

// NewPartnerHandler constructs a handler.
func NewPartnerHandler(partners partner.Repository) (*PartnerHandler, error) {
	if partners == nil {
		return nil, errors.New("partner handler: nil partner repository")
	}
	return &PartnerHandler{partners: partners}, nil
}

// ServeHTTP routes partner requests.
func (h *PartnerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/api/v1/partners" {
		h.handleList(w, r)
		return
	}
	if id := strings.TrimPrefix(r.URL.Path, "/api/v1/partners/"); id != "" && !strings.Contains(id, "/") {
		h.handleGet(w, r, id)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *PartnerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.partners.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	payload := make([]partnerResponse, 0, len(list))
	for _, p := range list {
		payload = append(payload, toPartnerResponse(p))
	}
	writeJSON(w, payload)
}

func (h *PartnerHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.partners.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, partner.ErrPartnerNotFound) {
			http.Error(w, "partner not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toPartnerResponse(*p))
}

type partnerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toPartnerResponse(p partner.Partner) partnerResponse {
	return partnerResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
