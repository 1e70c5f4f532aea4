package repository

import (
	"context"
	"database/sql"

	"chargeflow/internal/models"
)

// InvoiceRepository mirrors issued invoices for local history pages; the
// backend record stays authoritative.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository returns repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// SaveInvoice upserts one invoice by session id.
func (r *InvoiceRepository) SaveInvoice(ctx context.Context, inv models.Invoice) error {
	const query = `
		INSERT INTO invoices (backend_id, charging_session_id, subscription_id, subtotal, tax, subscription_adjustment, total, status, billing_month, billing_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (charging_session_id) DO UPDATE SET
			backend_id = EXCLUDED.backend_id,
			subtotal = EXCLUDED.subtotal,
			tax = EXCLUDED.tax,
			subscription_adjustment = EXCLUDED.subscription_adjustment,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.ChargingSessionID,
		nullableID(inv.SubscriptionID),
		inv.Subtotal,
		inv.Tax,
		inv.SubscriptionAdjustment,
		inv.Total,
		inv.Status,
		inv.BillingMonth,
		inv.BillingYear,
	)
	return err
}

// InvoiceBySession returns the mirrored invoice for a session.
func (r *InvoiceRepository) InvoiceBySession(ctx context.Context, sessionID int64) (*models.Invoice, error) {
	const query = `
		SELECT backend_id, charging_session_id, COALESCE(subscription_id, 0), subtotal, tax, subscription_adjustment, total, status, billing_month, billing_year
		FROM invoices
		WHERE charging_session_id = $1
	`
	var inv models.Invoice
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&inv.ID,
		&inv.ChargingSessionID,
		&inv.SubscriptionID,
		&inv.Subtotal,
		&inv.Tax,
		&inv.SubscriptionAdjustment,
		&inv.Total,
		&inv.Status,
		&inv.BillingMonth,
		&inv.BillingYear,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
