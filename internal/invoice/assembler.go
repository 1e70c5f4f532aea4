// Package invoice turns a finished charging session snapshot into an
// invoice and posts it to the backend. The backend's response is
// authoritative; the locally computed payload is only a display fallback.
package invoice

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/models"
)

// TaxRate is fixed at 10%.
const TaxRate = 0.10

// Input is the frozen final snapshot of a session.
type Input struct {
	SessionID              int64
	EnergyCost             float64
	IdlePenalty            float64
	SubscriptionAdjustment float64
	EndedAt                time.Time
}

// Assemble computes the invoice payload:
//
//	subtotal = energyCost + idlePenalty
//	tax      = round((subtotal - adjustment) * 0.10)
//	total    = subtotal - adjustment + tax
//
// The adjustment is trusted as given, zero when none applies; entitlement is
// computed server-side.
func Assemble(in Input) models.Invoice {
	subtotal := in.EnergyCost + in.IdlePenalty
	taxable := subtotal - in.SubscriptionAdjustment
	tax := math.Round(taxable * TaxRate)

	inv := models.Invoice{
		ChargingSessionID:      in.SessionID,
		Subtotal:               subtotal,
		Tax:                    tax,
		SubscriptionAdjustment: in.SubscriptionAdjustment,
		Total:                  taxable + tax,
		Status:                 models.InvoiceStatusUnpaid,
	}
	endedAt := in.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	inv.BillingMonth = int(endedAt.Month())
	inv.BillingYear = endedAt.Year()
	return inv
}

// InvoicesBackend is the slice of the backend invoices client the assembler
// uses.
type InvoicesBackend interface {
	Create(ctx context.Context, payload models.Invoice) (*models.Invoice, error)
}

// Mirror durably records issued invoices for local history.
type Mirror interface {
	SaveInvoice(ctx context.Context, inv models.Invoice) error
}

// Assembler posts assembled invoices.
type Assembler struct {
	invoices InvoicesBackend
	mirror   Mirror
	logger   *zap.Logger
}

// NewAssembler builds an assembler. mirror may be nil.
func NewAssembler(invoices InvoicesBackend, mirror Mirror, logger *zap.Logger) *Assembler {
	return &Assembler{invoices: invoices, mirror: mirror, logger: logger}
}

// CreateFromSession assembles and posts the invoice. On POST failure the
// error propagates so the caller can offer a manual retry; there is never a
// silent fallback to a fabricated invoice. When the backend accepts the
// request but returns no identifiable invoice, the locally computed payload
// is returned as a best-effort display value.
func (a *Assembler) CreateFromSession(ctx context.Context, in Input) (models.Invoice, error) {
	payload := Assemble(in)

	created, err := a.invoices.Create(ctx, payload)
	if err != nil {
		return models.Invoice{}, err
	}

	result := payload
	if created != nil {
		result = *created
	}

	if a.mirror != nil {
		if err := a.mirror.SaveInvoice(ctx, result); err != nil {
			a.logger.Warn("failed to mirror invoice", zap.Int64("session_id", in.SessionID), zap.Error(err))
		}
	}

	a.logger.Info("invoice created",
		zap.Int64("session_id", in.SessionID),
		zap.Float64("total", result.Total),
		zap.Bool("backend_authoritative", created != nil),
	)
	return result, nil
}
