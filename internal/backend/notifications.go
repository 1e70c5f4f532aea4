package backend

import (
	"context"

	"chargeflow/internal/api"
)

// Notifications wraps the admin /Notification endpoints.
type Notifications struct {
	api *api.Client
}

// NewNotifications builds the notifications client.
func NewNotifications(client *api.Client) *Notifications {
	return &Notifications{api: client}
}

// Message is one admin-sent notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendToCustomer targets one customer.
func (n *Notifications) SendToCustomer(ctx context.Context, customerID int64, msg Message) error {
	payload := struct {
		CustomerID int64 `json:"customerId"`
		Message
	}{CustomerID: customerID, Message: msg}
	return n.api.Post(ctx, "/Notification/admin/send-to-customer", payload, nil)
}

// SendToCompany targets one company.
func (n *Notifications) SendToCompany(ctx context.Context, companyID int64, msg Message) error {
	payload := struct {
		CompanyID int64 `json:"companyId"`
		Message
	}{CompanyID: companyID, Message: msg}
	return n.api.Post(ctx, "/Notification/admin/send-to-company", payload, nil)
}

// Broadcast targets everyone.
func (n *Notifications) Broadcast(ctx context.Context, msg Message) error {
	return n.api.Post(ctx, "/Notification/admin/broadcast", msg, nil)
}
