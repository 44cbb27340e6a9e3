package memory

import (
	"context"
	"sort"
	"sync"

	partner "marketplace-cloud/internal/partner/domain"
)

// PartnerRepository is an in-memory partner roster for tests.
type PartnerRepository struct {
	mu   sync.RWMutex
	data map[string]partner.Partner
}

// NewPartnerRepository constructs a repository.
func NewPartnerRepository(partners ...partner.Partner) *PartnerRepository {
	repo := &PartnerRepository{data: make(map[string]partner.Partner)}
	for _, p := range partners {
		repo.data[p.ID] = p
	}
	return repo
}

// Add seeds a partner.
func (r *PartnerRepository) Add(p partner.Partner) {
	r.mu.Lock()
	r.data[p.ID] = p
	r.mu.Unlock()
}

// List returns every partner in id order.
func (r *PartnerRepository) List(ctx context.Context) ([]partner.Partner, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]partner.Partner, 0, len(r.data))
	for _, p := range r.data {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Get fetches one partner.
func (r *PartnerRepository) Get(ctx context.Context, id string) (*partner.Partner, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, partner.ErrPartnerNotFound
	}
	copy := p
	return &copy, nil
}
