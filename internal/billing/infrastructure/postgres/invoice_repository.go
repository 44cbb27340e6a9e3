package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	billing "marketplace-cloud/internal/billing/domain"
)

// InvoiceRepository persists invoices and their settlement batches.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
	id, partner_id, start_date, end_date, created_at, total_amount, total_orders,
	status, payment_id, payment_method, payment_qr_code, payment_qr_code_base64,
	payment_ticket_url, paid_at`

// FindLatestByPartner returns the most recent invoice for a partner.
func (r *InvoiceRepository) FindLatestByPartner(ctx context.Context, partnerID string) (*billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if partnerID == "" {
		return nil, billing.ErrEmptyPartnerID
	}
	row := r.db.QueryRowContext(ctx, `
SELECT`+invoiceColumns+`
FROM invoices
WHERE partner_id = $1
ORDER BY created_at DESC
LIMIT 1`, partnerID)
	inv, err := scanInvoice(row)
	if errors.Is(err, billing.ErrInvoiceNotFound) {
		return nil, nil
	}
	return inv, err
}

// CreateSettlingFees persists the invoice and settles its fees in one
// transaction. Any fee already settled aborts the whole batch.
func (r *InvoiceRepository) CreateSettlingFees(ctx context.Context, inv *billing.Invoice, feeIDs []string) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if inv == nil {
		return billing.ErrNilInvoice
	}
	if len(feeIDs) == 0 {
		return billing.ErrNoFees
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO invoices (
	id, partner_id, start_date, end_date, created_at, total_amount, total_orders, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		inv.ID, inv.PartnerID, inv.StartDate, inv.EndDate, inv.CreatedAt,
		inv.TotalAmount, inv.TotalOrders, inv.Status)
	if err != nil {
		_ = tx.Rollback()
		var pgErr *pgconn.PgError
		// 23505 = unique_violation; the partial index allows one pending
		// invoice per partner.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "invoices_one_pending_idx" {
			return fmt.Errorf("%w: partner=%s", billing.ErrPendingInvoiceOpen, inv.PartnerID)
		}
		return err
	}
	for _, feeID := range feeIDs {
		res, err := tx.ExecContext(ctx, `
UPDATE fees
SET settled = TRUE, invoice_id = $3
WHERE partner_id = $1 AND id = $2 AND settled = FALSE`,
			inv.PartnerID, feeID, inv.ID)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if affected == 0 {
			_ = tx.Rollback()
			return fmt.Errorf("%w: fee=%s", billing.ErrFeeAlreadySettled, feeID)
		}
	}
	return tx.Commit()
}

// FindByID fetches one invoice.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT`+invoiceColumns+`
FROM invoices
WHERE id = $1
LIMIT 1`, id)
	return scanInvoice(row)
}

// FindByPaymentID resolves a gateway payment id to its invoice across all
// partners. payment_id carries a partial index, so this is the relational
// equivalent of a collection-group lookup.
func (r *InvoiceRepository) FindByPaymentID(ctx context.Context, paymentID string) (*billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if paymentID == "" {
		return nil, billing.ErrInvoiceNotFound
	}
	row := r.db.QueryRowContext(ctx, `
SELECT`+invoiceColumns+`
FROM invoices
WHERE payment_id = $1
LIMIT 1`, paymentID)
	return scanInvoice(row)
}

// ListByPartner returns a partner's invoices, newest first.
func (r *InvoiceRepository) ListByPartner(ctx context.Context, partnerID string) ([]billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if partnerID == "" {
		return nil, billing.ErrEmptyPartnerID
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT`+invoiceColumns+`
FROM invoices
WHERE partner_id = $1
ORDER BY created_at DESC`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}
	return result, rows.Err()
}

// AttachPayment stores the gateway correlation on a pending invoice.
func (r *InvoiceRepository) AttachPayment(ctx context.Context, invoiceID string, payment billing.PaymentAttachment) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	var qrCode, qrCodeBase64, ticketURL string
	if payment.Data != nil {
		qrCode = payment.Data.QRCode
		qrCodeBase64 = payment.Data.QRCodeBase64
		ticketURL = payment.Data.TicketURL
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE invoices
SET payment_id = $2, payment_method = $3,
	payment_qr_code = $4, payment_qr_code_base64 = $5, payment_ticket_url = $6
WHERE id = $1 AND status = 'pending'`,
		invoiceID, payment.PaymentID, payment.Method, qrCode, qrCodeBase64, ticketURL)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return billing.ErrInvoiceNotPending
	}
	return nil
}

// MarkPaid transitions pending -> paid. The WHERE guard makes a duplicate
// delivery a no-op that preserves the original paid_at.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("invoice repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE invoices
SET status = 'paid', paid_at = $2
WHERE id = $1 AND status = 'pending'`, invoiceID, paidAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListFees returns the fees consumed by an invoice.
func (r *InvoiceRepository) ListFees(ctx context.Context, invoiceID string) ([]billing.Fee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, partner_id, value, settled, created_at
FROM fees
WHERE invoice_id = $1
ORDER BY created_at ASC`, invoiceID)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*billing.Invoice, error) {
	var inv billing.Invoice
	var paymentID, paymentMethod, qrCode, qrCodeBase64, ticketURL sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.PartnerID, &inv.StartDate, &inv.EndDate, &inv.CreatedAt,
		&inv.TotalAmount, &inv.TotalOrders, &inv.Status,
		&paymentID, &paymentMethod, &qrCode, &qrCodeBase64, &ticketURL, &paidAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, billing.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.PaymentID = paymentID.String
	inv.PaymentMethod = billing.PaymentMethod(paymentMethod.String)
	if qrCode.Valid || qrCodeBase64.Valid || ticketURL.Valid {
		inv.PaymentData = &billing.PaymentData{
			QRCode:       qrCode.String,
			QRCodeBase64: qrCodeBase64.String,
			TicketURL:    ticketURL.String,
		}
	}
	if paidAt.Valid {
		inv.PaidAt = paidAt.Time
	}
	return &inv, nil
}
