package payment

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Gateway return query parameters. vnp_Amount is the actual amount times
// 100; vnp_PayDate is yyyyMMddHHmmss with no timezone designator and is
// taken as local time.
const (
	paramOrder        = "order"
	paramSuccess      = "success"
	paramResponseCode = "vnp_ResponseCode"
	paramTxnRef       = "vnp_TxnRef"
	paramAmount       = "vnp_Amount"
	paramPayDate      = "vnp_PayDate"

	payDateLayout = "20060102150405"

	// gatewaySuccessCode is the gateway's "approved" response code.
	gatewaySuccessCode = "00"
)

// ReturnParams is the parsed gateway return. Every field is optional on the
// wire; absent values stay zero and callers fall back to the cached payment
// order.
type ReturnParams struct {
	OrderID      string
	Success      bool
	ResponseCode string
	TxnRef       string
	Amount       float64
	PaidAt       time.Time
}

// ParseReturn reads the browser-visible completion URL query. Missing
// optional parameters are tolerated; success is taken from the explicit
// success flag when present, else from the gateway response code.
func ParseReturn(q url.Values) ReturnParams {
	p := ReturnParams{
		OrderID:      strings.TrimSpace(q.Get(paramOrder)),
		ResponseCode: q.Get(paramResponseCode),
		TxnRef:       q.Get(paramTxnRef),
	}

	switch q.Get(paramSuccess) {
	case "true":
		p.Success = true
	case "false":
		p.Success = false
	default:
		p.Success = p.ResponseCode == gatewaySuccessCode
	}

	if raw := q.Get(paramAmount); raw != "" {
		if cents, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.Amount = float64(cents) / 100
		}
	}

	if raw := q.Get(paramPayDate); raw != "" {
		if t, err := time.ParseInLocation(payDateLayout, raw, time.Local); err == nil {
			p.PaidAt = t
		}
	}

	if p.OrderID == "" {
		p.OrderID = p.TxnRef
	}
	return p
}
