// Package hold implements the post-payment reservation hold: a countdown
// window during which the customer must identify the charger or port they
// are standing at to begin charging. The state machine is an explicit tagged
// value with a single transition function; it is serialized to storage only
// at transition boundaries.
package hold

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chargeflow/internal/models"
)

// Phase is the current state of a reservation hold.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAwaitingRedeem Phase = "awaiting_redeem"
	PhaseRedeemed       Phase = "redeemed"
	PhaseExpired        Phase = "expired"
)

var (
	// ErrExpired rejects redeem attempts after the hold window closed.
	ErrExpired = errors.New("hold: reservation hold expired, please rebook")
	// ErrIdentifierMismatch rejects identifiers not in the allow-list.
	ErrIdentifierMismatch = errors.New("hold: identifier does not match the reserved charger or port")
	// ErrNotAwaiting rejects transitions from a phase that has no such edge.
	ErrNotAwaiting = errors.New("hold: not awaiting redeem")
)

// Hold is the state machine value. Zero value is PhaseIdle with no context.
type Hold struct {
	Phase      Phase                     `json:"phase"`
	Context    models.ReservationContext `json:"context"`
	RedeemedAt time.Time                 `json:"redeemedAt,omitempty"`
}

// Begin enters AwaitingRedeem for a paid order. The countdown is anchored to
// Context.PaidAt, never to the moment this page was opened.
func Begin(rc models.ReservationContext) Hold {
	return Hold{Phase: PhaseAwaitingRedeem, Context: rc}
}

// TimeLeft recomputes the remaining hold window from wall-clock time.
// Derived on every evaluation rather than decremented, so it self-corrects
// after suspension. Floors at zero.
func (h Hold) TimeLeft(now time.Time) time.Duration {
	if h.Phase != PhaseAwaitingRedeem {
		return 0
	}
	left := h.Context.HoldDuration() - now.Sub(h.Context.PaidAt)
	if left < 0 {
		return 0
	}
	return left
}

// Redeem is the only transition out of AwaitingRedeem. The identifier is
// normalized and matched exactly against the allow-list derived from the
// bound charger/port snapshot; no fuzzy matching. Expiry is checked against
// the same wall clock first, so a redeem at or past the deadline fails even
// if no tick ever observed zero.
func (h Hold) Redeem(identifier string, now time.Time) (Hold, error) {
	switch h.Phase {
	case PhaseAwaitingRedeem:
	case PhaseExpired:
		return h, ErrExpired
	default:
		return h, ErrNotAwaiting
	}

	if h.TimeLeft(now) <= 0 {
		expired := h
		expired.Phase = PhaseExpired
		return expired, ErrExpired
	}

	if !matches(identifier, allowList(h.Context)) {
		return h, ErrIdentifierMismatch
	}

	redeemed := h
	redeemed.Phase = PhaseRedeemed
	redeemed.RedeemedAt = now
	return redeemed, nil
}

// Expire marks the hold expired once the window has closed. No-op outside
// AwaitingRedeem.
func (h Hold) Expire(now time.Time) Hold {
	if h.Phase != PhaseAwaitingRedeem || h.TimeLeft(now) > 0 {
		return h
	}
	expired := h
	expired.Phase = PhaseExpired
	return expired
}

// allowList builds the accepted identifiers for the bound snapshot: port id,
// port code, charger id, charger code, and a few charger-port composite
// spellings customers copy off the hardware label.
func allowList(rc models.ReservationContext) []string {
	var list []string
	add := func(s string) {
		if n := normalize(s); n != "" {
			list = append(list, n)
		}
	}

	if rc.Port.ID != 0 {
		add(fmt.Sprintf("%d", rc.Port.ID))
	}
	add(rc.Port.Code)
	if rc.Charger.ID != 0 {
		add(fmt.Sprintf("%d", rc.Charger.ID))
	}
	add(rc.Charger.Code)
	if rc.Charger.Code != "" && rc.Port.Code != "" {
		add(rc.Charger.Code + "-" + rc.Port.Code)
		add(rc.Charger.Code + " " + rc.Port.Code)
	}
	if rc.Charger.Code != "" && rc.Port.ID != 0 {
		add(fmt.Sprintf("%s-%d", rc.Charger.Code, rc.Port.ID))
	}
	return list
}

// normalize trims, case-folds and collapses internal whitespace.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func matches(identifier string, allowed []string) bool {
	n := normalize(identifier)
	if n == "" {
		return false
	}
	for _, a := range allowed {
		if n == a {
			return true
		}
	}
	return false
}
