package models

import "time"

// Invoice status values.
const (
	InvoiceStatusUnpaid = "Unpaid"
	InvoiceStatusPaid   = "Paid"
)

// Invoice bills one finished charging session, or one subscription period
// when SubscriptionID is set instead.
type Invoice struct {
	ID                     int64   `json:"id"`
	ChargingSessionID      int64   `json:"chargingSessionId,omitempty"`
	SubscriptionID         int64   `json:"subscriptionId,omitempty"`
	Subtotal               float64 `json:"subtotal"`
	Tax                    float64 `json:"tax"`
	SubscriptionAdjustment float64 `json:"subscriptionAdjustment"`
	Total                  float64 `json:"total"`
	Status                 string  `json:"status"`
	BillingMonth           int     `json:"billingMonth"`
	BillingYear            int     `json:"billingYear"`
}

// NormalizeInvoice maps a loosely-typed backend payload to an Invoice.
func NormalizeInvoice(m map[string]any) Invoice {
	return Invoice{
		ID:                     intField(m, "id", "invoiceId"),
		ChargingSessionID:      intField(m, "chargingSessionId", "sessionId"),
		SubscriptionID:         intField(m, "subscriptionId"),
		Subtotal:               floatField(m, "subtotal"),
		Tax:                    floatField(m, "tax", "taxAmount"),
		SubscriptionAdjustment: floatField(m, "subscriptionAdjustment", "discount"),
		Total:                  floatField(m, "total", "totalAmount"),
		Status:                 stringField(m, "status", "invoiceStatus"),
		BillingMonth:           int(intField(m, "billingMonth", "month")),
		BillingYear:            int(intField(m, "billingYear", "year")),
	}
}

// Subscription status values.
const (
	SubscriptionStatusActive   = "Active"
	SubscriptionStatusPending  = "Pending"
	SubscriptionStatusCanceled = "Canceled"
)

// Subscription is owned by either a customer or a company, never both.
// Proration is computed server-side; the gateway only passes values through.
type Subscription struct {
	ID           int64  `json:"id"`
	PlanID       int64  `json:"planId"`
	CustomerID   int64  `json:"customerId,omitempty"`
	CompanyID    int64  `json:"companyId,omitempty"`
	BillingCycle string `json:"billingCycle"`
	AutoRenew    bool   `json:"autoRenew"`
	Status       string `json:"status"`
}

// NormalizeSubscription maps a loosely-typed backend payload to a
// Subscription.
func NormalizeSubscription(m map[string]any) Subscription {
	return Subscription{
		ID:           intField(m, "id", "subscriptionId"),
		PlanID:       intField(m, "planId"),
		CustomerID:   intField(m, "customerId"),
		CompanyID:    intField(m, "companyId"),
		BillingCycle: stringField(m, "billingCycle", "cycle"),
		AutoRenew:    boolField(m, "autoRenew"),
		Status:       stringField(m, "status", "subscriptionStatus"),
	}
}

// PaymentOrder is ephemeral client-local state: exactly one of BookingID,
// InvoiceID, SubscriptionID is set for a single payment. It lives in the
// handoff store between creating the gateway URL and the browser coming
// back.
type PaymentOrder struct {
	OrderID        string    `json:"orderId"`
	Amount         float64   `json:"amount"`
	BookingID      int64     `json:"bookingId,omitempty"`
	InvoiceID      int64     `json:"invoiceId,omitempty"`
	SubscriptionID int64     `json:"subscriptionId,omitempty"`
	PaymentURL     string    `json:"paymentUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}
