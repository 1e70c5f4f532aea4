package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"chargeflow/internal/models"
	"chargeflow/internal/payment"
)

// PaymentHandler starts gateway payments and handles the browser's return.
type PaymentHandler struct {
	flow   *payment.Service
	logger *zap.Logger
}

// NewPaymentHandler builds handler.
func NewPaymentHandler(flow *payment.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{flow: flow, logger: logger}
}

type bookingPaymentRequest struct {
	Booking     models.Booking `json:"booking"`
	Station     models.Station `json:"station"`
	Charger     models.Charger `json:"charger"`
	Port        models.Port    `json:"port"`
	Amount      float64        `json:"amount"`
	PricePerKWh float64        `json:"pricePerKWh"`
	BookingFee  float64        `json:"bookingFee"`
	VehicleID   int64          `json:"vehicleId"`
	CompanyID   int64          `json:"companyId,omitempty"`
	ReturnURL   string         `json:"returnUrl,omitempty"`
}

// BeginBooking creates a gateway URL for a booking payment.
func (h *PaymentHandler) BeginBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Booking.ID == 0 || req.Port.ID == 0 {
		writeError(w, http.StatusBadRequest, "booking and port are required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	order, err := h.flow.BeginBookingPayment(r.Context(), payment.BookingCheckout{
		Booking:     req.Booking,
		Station:     req.Station,
		Charger:     req.Charger,
		Port:        req.Port,
		Amount:      req.Amount,
		PricePerKWh: req.PricePerKWh,
		BookingFee:  req.BookingFee,
		CompanyID:   req.CompanyID,
		VehicleID:   req.VehicleID,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

type invoicePaymentRequest struct {
	InvoiceID int64   `json:"invoiceId"`
	Amount    float64 `json:"amount"`
	ReturnURL string  `json:"returnUrl,omitempty"`
}

// BeginInvoice creates a gateway URL to settle an invoice.
func (h *PaymentHandler) BeginInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoicePaymentRequest
	if err := decodeBody(r, &req); err != nil || req.InvoiceID == 0 {
		writeError(w, http.StatusBadRequest, "invoice id is required")
		return
	}
	order, err := h.flow.BeginInvoicePayment(r.Context(), req.InvoiceID, req.Amount, req.ReturnURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

type comboPaymentRequest struct {
	InvoiceIDs     []int64 `json:"invoiceIds"`
	SubscriptionID int64   `json:"subscriptionId,omitempty"`
	Amount         float64 `json:"amount"`
	ReturnURL      string  `json:"returnUrl,omitempty"`
}

// BeginCombo creates one gateway URL settling several invoices at once.
func (h *PaymentHandler) BeginCombo(w http.ResponseWriter, r *http.Request) {
	var req comboPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.InvoiceIDs) == 0 && req.SubscriptionID == 0 {
		writeError(w, http.StatusBadRequest, "at least one invoice or a subscription is required")
		return
	}
	order, err := h.flow.BeginComboPayment(r.Context(), payment.ComboCheckout{
		InvoiceIDs:     req.InvoiceIDs,
		SubscriptionID: req.SubscriptionID,
		Amount:         req.Amount,
		ReturnURL:      req.ReturnURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// BeginSubscriptionRenewal creates a gateway URL to renew a subscription.
func (h *PaymentHandler) BeginSubscriptionRenewal(w http.ResponseWriter, r *http.Request) {
	subscriptionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	order, err := h.flow.BeginSubscriptionRenewal(r.Context(), subscriptionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// Return is the browser-visible gateway return URL. It resumes the flow and
// forwards to the SPA success or failure page, carrying the order id.
func (h *PaymentHandler) Return(w http.ResponseWriter, r *http.Request) {
	params := payment.ParseReturn(r.URL.Query())

	order, err := h.flow.Resume(r.Context(), params)
	switch {
	case err == nil:
		http.Redirect(w, r, "/pay/success?order="+url.QueryEscape(order.OrderID), http.StatusFound)
	case errors.Is(err, payment.ErrPaymentFailed):
		http.Redirect(w, r, "/pay/failure?order="+url.QueryEscape(params.OrderID), http.StatusFound)
	case errors.Is(err, payment.ErrUnknownOrder):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeServiceError(w, err)
	}
}
