package backend

import (
	"context"
	"fmt"

	"chargeflow/internal/api"
	"chargeflow/internal/models"
)

// Subscriptions wraps the /Subscriptions endpoints. Lifecycle changes are
// single PUT updates; proration stays server-side.
type Subscriptions struct {
	api *api.Client
}

// NewSubscriptions builds the subscriptions client.
func NewSubscriptions(client *api.Client) *Subscriptions {
	return &Subscriptions{api: client}
}

// List returns all subscriptions visible to the caller.
func (s *Subscriptions) List(ctx context.Context) ([]models.Subscription, error) {
	var raw []map[string]any
	if err := s.api.Get(ctx, "/Subscriptions", &raw); err != nil {
		return nil, err
	}
	subs := make([]models.Subscription, 0, len(raw))
	for _, entry := range raw {
		subs = append(subs, models.NormalizeSubscription(entry))
	}
	return subs, nil
}

// Get fetches one subscription.
func (s *Subscriptions) Get(ctx context.Context, id int64) (*models.Subscription, error) {
	var raw map[string]any
	if err := s.api.Get(ctx, fmt.Sprintf("/Subscriptions/%d", id), &raw); err != nil {
		return nil, err
	}
	sub := models.NormalizeSubscription(raw)
	return &sub, nil
}

// Update applies a lifecycle change (cancel, toggle auto-renew, change
// cycle) as one PUT.
func (s *Subscriptions) Update(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	var raw map[string]any
	if err := s.api.Put(ctx, fmt.Sprintf("/Subscriptions/%d", sub.ID), sub, &raw); err != nil {
		return nil, err
	}
	updated := models.NormalizeSubscription(raw)
	return &updated, nil
}
