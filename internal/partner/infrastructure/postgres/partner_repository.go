package postgres

import (
	"context"
	"database/sql"
	"errors"

	partner "marketplace-cloud/internal/partner/domain"
)

// PartnerRepository reads the partner roster from Postgres.
type PartnerRepository struct {
	db *sql.DB
}

// NewPartnerRepository constructs a repository.
func NewPartnerRepository(db *sql.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// List returns every partner in id order.
func (r *PartnerRepository) List(ctx context.Context) ([]partner.Partner, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("partner repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created_at
FROM partners
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []partner.Partner
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Get fetches one partner.
func (r *PartnerRepository) Get(ctx context.Context, id string) (*partner.Partner, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("partner repo: nil db")
	}
	var p partner.Partner
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM partners
WHERE id = $1
LIMIT 1`, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, partner.ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
