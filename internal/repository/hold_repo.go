package repository

import (
	"context"
	"database/sql"

	"chargeflow/internal/hold"
)

// HoldRepository durably records reservation-hold transitions. The handoff
// store carries the live state; this table is the audit trail and survives
// redis eviction.
type HoldRepository struct {
	db *sql.DB
}

// NewHoldRepository returns repository.
func NewHoldRepository(db *sql.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// RecordTransition appends one state-machine edge.
func (r *HoldRepository) RecordTransition(ctx context.Context, t hold.Transition) error {
	const query = `
		INSERT INTO hold_transitions (order_id, from_phase, to_phase, identifier, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		t.OrderID,
		string(t.FromPhase),
		string(t.ToPhase),
		t.Identifier,
		t.OccurredAt,
	)
	return err
}

// LastPhase returns the most recent recorded phase for an order, empty when
// none exists.
func (r *HoldRepository) LastPhase(ctx context.Context, orderID string) (hold.Phase, error) {
	const query = `
		SELECT to_phase
		FROM hold_transitions
		WHERE order_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1
	`
	var phase string
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&phase)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hold.Phase(phase), nil
}

// TransitionsForOrder returns the full recorded history of one order.
func (r *HoldRepository) TransitionsForOrder(ctx context.Context, orderID string) ([]hold.Transition, error) {
	const query = `
		SELECT order_id, from_phase, to_phase, identifier, occurred_at
		FROM hold_transitions
		WHERE order_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []hold.Transition
	for rows.Next() {
		var t hold.Transition
		var from, to string
		if err := rows.Scan(&t.OrderID, &from, &to, &t.Identifier, &t.OccurredAt); err != nil {
			return nil, err
		}
		t.FromPhase = hold.Phase(from)
		t.ToPhase = hold.Phase(to)
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transitions, nil
}
