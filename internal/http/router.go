package httpserver

import (
	"net/http"

	"chargeflow/internal/authsession"
	"chargeflow/internal/http/middleware"
)

// Routes aggregates handlers for HTTP server. Nil entries are skipped so
// tests can wire only the slice they exercise.
type Routes struct {
	Health http.HandlerFunc

	Login          http.HandlerFunc
	Logout         http.HandlerFunc
	ChangePassword http.HandlerFunc
	ForgotPassword http.HandlerFunc
	ResetPassword  http.HandlerFunc

	Stations http.HandlerFunc
	Chargers http.HandlerFunc
	Ports    http.HandlerFunc
	Reserve  http.HandlerFunc

	BeginBookingPayment      http.HandlerFunc
	BeginInvoicePayment      http.HandlerFunc
	BeginComboPayment        http.HandlerFunc
	BeginSubscriptionRenewal http.HandlerFunc
	PaymentReturn            http.HandlerFunc

	HoldEnter  http.HandlerFunc
	HoldRedeem http.HandlerFunc

	SessionSnapshot http.HandlerFunc
	SessionStop     http.HandlerFunc
	SessionInvoice  http.HandlerFunc
	SessionStream   http.HandlerFunc
	GuestStart      http.HandlerFunc

	Subscriptions      http.HandlerFunc
	Subscription       http.HandlerFunc
	SubscriptionUpdate http.HandlerFunc

	NotifyCustomer  http.HandlerFunc
	NotifyCompany   http.HandlerFunc
	NotifyBroadcast http.HandlerFunc
}

// NewRouter wires all HTTP routes. The JWT secret feeds the role guard;
// catalog browsing, login and the gateway return stay public because the
// browser reaches them before any session exists.
func NewRouter(routes Routes, secret string) http.Handler {
	mux := http.NewServeMux()

	anyone := middleware.Guard(secret)
	customer := middleware.Guard(secret, authsession.RoleCustomer)
	staff := middleware.Guard(secret, authsession.RoleStaff, authsession.RoleAdmin)
	admin := middleware.Guard(secret, authsession.RoleAdmin)

	handle := func(pattern string, h http.HandlerFunc, guard func(http.Handler) http.Handler) {
		if h == nil {
			return
		}
		if guard == nil {
			mux.Handle(pattern, h)
			return
		}
		mux.Handle(pattern, guard(h))
	}

	handle("GET /health", routes.Health, nil)

	handle("POST /api/auth/login", routes.Login, nil)
	handle("POST /api/auth/logout", routes.Logout, nil)
	handle("POST /api/auth/forgot-password", routes.ForgotPassword, nil)
	handle("POST /api/auth/reset-password", routes.ResetPassword, nil)
	handle("PUT /api/auth/change-password", routes.ChangePassword, anyone)

	handle("GET /api/stations", routes.Stations, nil)
	handle("GET /api/stations/{id}/chargers", routes.Chargers, nil)
	handle("GET /api/chargers/{id}/ports", routes.Ports, nil)
	handle("POST /api/bookings", routes.Reserve, customer)

	handle("POST /api/payments/booking", routes.BeginBookingPayment, customer)
	handle("POST /api/payments/invoice", routes.BeginInvoicePayment, customer)
	handle("POST /api/payments/combo", routes.BeginComboPayment, customer)
	handle("POST /api/payments/subscriptions/{id}/renew", routes.BeginSubscriptionRenewal, customer)
	handle("GET /api/payments/return", routes.PaymentReturn, nil)

	handle("GET /api/holds/{order}", routes.HoldEnter, customer)
	handle("POST /api/holds/{order}/redeem", routes.HoldRedeem, customer)

	handle("GET /api/sessions/{id}", routes.SessionSnapshot, anyone)
	handle("POST /api/sessions/{id}/stop", routes.SessionStop, anyone)
	handle("POST /api/sessions/{id}/invoice", routes.SessionInvoice, anyone)
	handle("GET /ws/sessions/{id}", routes.SessionStream, anyone)
	handle("POST /api/sessions/guest/start", routes.GuestStart, staff)

	handle("GET /api/subscriptions", routes.Subscriptions, anyone)
	handle("GET /api/subscriptions/{id}", routes.Subscription, anyone)
	handle("PUT /api/subscriptions/{id}", routes.SubscriptionUpdate, anyone)

	handle("POST /api/notifications/customers/{id}", routes.NotifyCustomer, admin)
	handle("POST /api/notifications/companies/{id}", routes.NotifyCompany, admin)
	handle("POST /api/notifications/broadcast", routes.NotifyBroadcast, admin)

	return mux
}
