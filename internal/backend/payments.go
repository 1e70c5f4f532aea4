package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chargeflow/internal/api"
)

// Payments wraps the /Payment endpoints that hand the browser off to the
// external gateway.
type Payments struct {
	api *api.Client
}

// NewPayments builds the payments client.
func NewPayments(client *api.Client) *Payments {
	return &Payments{api: client}
}

// ErrNoPaymentURL means the backend response carried none of the known
// payment URL keys.
var ErrNoPaymentURL = errors.New("backend: payment response carried no redirect url")

// CreatePaymentInput requests a gateway URL for a single payment. Exactly
// one of BookingID, InvoiceID, SubscriptionID is set.
type CreatePaymentInput struct {
	OrderID        string  `json:"orderId"`
	Amount         float64 `json:"amount"`
	BookingID      int64   `json:"bookingId,omitempty"`
	InvoiceID      int64   `json:"invoiceId,omitempty"`
	SubscriptionID int64   `json:"subscriptionId,omitempty"`
	ReturnURL      string  `json:"returnUrl,omitempty"`
}

// CreatePayment requests a gateway redirect URL for a single payment.
func (p *Payments) CreatePayment(ctx context.Context, input CreatePaymentInput) (string, error) {
	return p.create(ctx, "/Payment/create", input)
}

// CreateComboPayment requests one redirect URL covering several references.
func (p *Payments) CreateComboPayment(ctx context.Context, input map[string]any) (string, error) {
	return p.create(ctx, "/Payment/create-combo-url", input)
}

// CreateSubscriptionPayment requests a renewal URL for a subscription.
func (p *Payments) CreateSubscriptionPayment(ctx context.Context, subscriptionID int64) (string, error) {
	return p.create(ctx, fmt.Sprintf("/Payment/create-subscription/%d", subscriptionID), nil)
}

func (p *Payments) create(ctx context.Context, path string, body any) (string, error) {
	var raw map[string]any
	if err := p.api.Post(ctx, path, body, &raw); err != nil {
		return "", err
	}
	url := paymentURL(raw)
	if url == "" {
		return "", ErrNoPaymentURL
	}
	return url, nil
}

// paymentURL normalizes the redirect URL out of whichever key the backend
// used this time.
func paymentURL(raw map[string]any) string {
	for _, key := range []string{"paymentUrl", "url", "location", "redirectUrl"} {
		if v, ok := raw[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
