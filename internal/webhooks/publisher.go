// Package webhooks delivers planner events to subscriber endpoints with
// HMAC signatures and retry.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tripweaver/internal/store"
)

// Event types emitted by the planner.
const (
	EventItineraryGenerated = "itinerary.generated"
	EventItineraryRefined   = "itinerary.refined"
	EventActivitiesImported = "activities.imported"
)

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit enqueues one delivery per matching subscription. Failures to
// look up or enqueue are swallowed: webhook delivery is best-effort and
// must never fail the request that triggered it.
func (p *Publisher) Emit(ctx context.Context, tenantID, eventType string, data any) {
	subs, err := p.Store.GetSubscriptionsForEvent(ctx, tenantID, eventType)
	if err != nil || len(subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":       fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type":     eventType,
		"tenantId": tenantID,
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"data":     data,
	}
	body, _ := json.Marshal(payload)
	for _, s := range subs {
		_, _ = p.Store.EnqueueWebhook(ctx, tenantID, s.ID, eventType, s.URL, s.Secret, body)
	}
}
