package billing

import "time"

// Fee is one platform commission charged to a partner. Fees are created by
// order fulfillment and consumed by exactly one invoice; once settled they
// are immutable.
type Fee struct {
	ID        string
	PartnerID string
	Value     float64
	Settled   bool
	CreatedAt time.Time
}
