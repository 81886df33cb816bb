package store

import (
	"context"
	"errors"
	"time"

	"tripweaver/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Activities
	CreateActivities(ctx context.Context, tenantID string, activities []model.Activity) (importID string, created, skipped int, err error)
	ListActivities(ctx context.Context, tenantID, category, cursor string, limit int) (items []model.ActivityOut, nextCursor string, err error)

	// Itineraries
	SaveItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error)
	GetItinerary(ctx context.Context, tenantID, id string) (model.Itinerary, error)
	ListItineraries(ctx context.Context, tenantID, cursor string, limit int) ([]model.Itinerary, string, error)
	UpdateItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error)
	RetryWebhookDelivery(ctx context.Context, tenantID, id string) error

	// Default planner preferences per tenant
	GetPlannerConfig(ctx context.Context, tenantID string) (model.Preferences, bool, error)
	SavePlannerConfig(ctx context.Context, tenantID string, prefs model.Preferences) error
}

// WebhookDelivery is one queued outbound webhook attempt.
type WebhookDelivery struct {
	ID             string
	TenantID       string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}

var ErrNotFound = errors.New("not found")
