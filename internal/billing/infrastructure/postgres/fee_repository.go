package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "marketplace-cloud/internal/billing/domain"
)

// FeeRepository reads the per-partner fee ledger from Postgres.
type FeeRepository struct {
	db *sql.DB
}

// NewFeeRepository constructs a repository.
func NewFeeRepository(db *sql.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// ListUnsettled returns unsettled fees created inside the inclusive window.
func (r *FeeRepository) ListUnsettled(ctx context.Context, partnerID string, window billing.AccrualWindow) ([]billing.Fee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fee repo: nil db")
	}
	if partnerID == "" {
		return nil, billing.ErrEmptyPartnerID
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, partner_id, value, settled, created_at
FROM fees
WHERE partner_id = $1 AND settled = FALSE
	AND created_at >= $2 AND created_at <= $3
ORDER BY created_at ASC`, partnerID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Fee
	for rows.Next() {
		var fee billing.Fee
		if err := rows.Scan(&fee.ID, &fee.PartnerID, &fee.Value, &fee.Settled, &fee.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fee)
	}
	return result, rows.Err()
}
