package backend

import (
	"context"
	"errors"
	"net/http"

	"chargeflow/internal/api"
	"chargeflow/internal/models"
)

// Invoices wraps invoice creation. Some backend deployments expose the
// route in singular form, so creation falls back to /Invoice on 404.
type Invoices struct {
	api *api.Client
}

// NewInvoices builds the invoices client.
func NewInvoices(client *api.Client) *Invoices {
	return &Invoices{api: client}
}

// Create posts a computed invoice. The returned invoice is nil when the
// backend accepted the request but returned no identifiable invoice object;
// the caller then falls back to its own computed payload for display.
func (i *Invoices) Create(ctx context.Context, payload models.Invoice) (*models.Invoice, error) {
	raw, err := i.post(ctx, "/Invoices", payload)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			raw, err = i.post(ctx, "/Invoice", payload)
		}
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	created := models.NormalizeInvoice(raw)
	if created.ID == 0 {
		return nil, nil
	}
	return &created, nil
}

func (i *Invoices) post(ctx context.Context, path string, payload models.Invoice) (map[string]any, error) {
	var raw map[string]any
	if err := i.api.Post(ctx, path, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
