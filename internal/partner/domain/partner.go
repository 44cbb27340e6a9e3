package partner

import (
	"context"
	"errors"
	"time"
)

// ErrPartnerNotFound is returned when a partner lookup matches nothing.
var ErrPartnerNotFound = errors.New("partner: not found")

// Partner is an affiliated store on the platform. The billing core only
// reads its identity and creation time; everything else belongs to the
// partner-facing product surface.
type Partner struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Repository reads the partner roster.
type Repository interface {
	// List returns every partner, in stable id order.
	List(ctx context.Context) ([]Partner, error)
	// Get fetches one partner. Returns ErrPartnerNotFound when absent.
	Get(ctx context.Context, id string) (*Partner, error)
}
