package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripweaver/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu          sync.Mutex
	activities  map[string]model.ActivityOut  // id -> activity
	actsByTen   map[string][]string           // tenant -> activity ids
	itineraries map[string]model.Itinerary    // id -> itinerary
	itinByTen   map[string][]string           // tenant -> itinerary ids
	subs        map[string][]model.Subscription
	deliveries  map[string]*memDelivery
	delByTen    map[string][]string
	prefs       map[string]model.Preferences // tenant -> default preferences
}

func NewMemory() *Memory {
	return &Memory{
		activities:  map[string]model.ActivityOut{},
		actsByTen:   map[string][]string{},
		itineraries: map[string]model.Itinerary{},
		itinByTen:   map[string][]string{},
		subs:        map[string][]model.Subscription{},
		deliveries:  map[string]*memDelivery{},
		delByTen:    map[string][]string{},
		prefs:       map[string]model.Preferences{},
	}
}

// memDelivery augments WebhookDelivery with scheduling/metrics state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

// CreateActivities inserts activities, skipping duplicates by content key.
func (m *Memory) CreateActivities(ctx context.Context, tenantID string, activities []model.Activity) (string, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	for _, id := range m.actsByTen[tenantID] {
		seen[m.activities[id].Activity.Key()] = struct{}{}
	}
	created, skipped := 0, 0
	for _, a := range activities {
		if _, dup := seen[a.Key()]; dup {
			skipped++
			continue
		}
		seen[a.Key()] = struct{}{}
		id := uuid.New().String()
		m.activities[id] = model.ActivityOut{ID: id, TenantID: tenantID, Activity: a}
		m.actsByTen[tenantID] = append(m.actsByTen[tenantID], id)
		created++
	}
	return fmt.Sprintf("imp_%d", time.Now().UnixNano()), created, skipped, nil
}

func (m *Memory) ListActivities(ctx context.Context, tenantID, category, cursor string, limit int) ([]model.ActivityOut, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.actsByTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.ActivityOut{}
	next := ""
	for _, id := range ids[start:] {
		item := m.activities[id]
		if category != "" && !strings.EqualFold(item.Activity.Category, category) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			next = id
			break
		}
	}
	return out, next, nil
}

func (m *Memory) SaveItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it.ID = uuid.New().String()
	it.Version = 1
	it.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.itineraries[it.ID] = it
	m.itinByTen[it.TenantID] = append(m.itinByTen[it.TenantID], it.ID)
	return it, nil
}

func (m *Memory) GetItinerary(ctx context.Context, tenantID, id string) (model.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.itineraries[id]
	if !ok || it.TenantID != tenantID {
		return model.Itinerary{}, ErrNotFound
	}
	return it, nil
}

func (m *Memory) ListItineraries(ctx context.Context, tenantID, cursor string, limit int) ([]model.Itinerary, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.itinByTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Itinerary{}
	next := ""
	for _, id := range ids[start:] {
		out = append(out, m.itineraries[id])
		if len(out) == limit {
			next = id
			break
		}
	}
	return out, next, nil
}

func (m *Memory) UpdateItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.itineraries[it.ID]
	if !ok || existing.TenantID != it.TenantID {
		return model.Itinerary{}, ErrNotFound
	}
	it.Version = existing.Version + 1
	it.CreatedAt = existing.CreatedAt
	m.itineraries[it.ID] = it
	return it, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], sub)
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscription{}
	for _, sub := range m.subs[tenantID] {
		for _, e := range sub.Events {
			if e == eventType || e == "*" {
				out = append(out, sub)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[tenantID]
	start := 0
	if cursor != "" {
		for i, s := range subs {
			if s.ID == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(subs) {
		end = len(subs)
	}
	out := append([]model.Subscription{}, subs[start:end]...)
	next := ""
	if end < len(subs) && len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[tenantID]
	for i, s := range subs {
		if s.ID == id {
			m.subs[tenantID] = append(subs[:i], subs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID: id, TenantID: tenantID, SubscriptionID: subscriptionID,
			EventType: eventType, URL: url, Secret: secret, Payload: payload,
			Status: "pending",
		},
		NextAttemptAt: time.Now(),
	}
	m.delByTen[tenantID] = append(m.delByTen[tenantID], id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	now := time.Now()
	due := []*memDelivery{}
	for _, d := range m.deliveries {
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			due = append(due, d)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	out := make([]WebhookDelivery, 0, len(due))
	for _, d := range due {
		out = append(out, d.WebhookDelivery)
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.delByTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []map[string]any{}
	next := ""
	for _, id := range ids[start:] {
		d := m.deliveries[id]
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id": d.ID, "eventType": d.EventType, "url": d.URL,
			"status": d.Status, "attempts": d.Attempts,
			"lastError": d.LastError, "responseCode": d.ResponseCode,
			"latencyMs": d.LatencyMs,
		})
		if len(out) == limit {
			next = id
			break
		}
	}
	return out, next, nil
}

func (m *Memory) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok || d.TenantID != tenantID {
		return ErrNotFound
	}
	d.Status = "pending"
	d.NextAttemptAt = time.Now()
	return nil
}

func (m *Memory) GetPlannerConfig(ctx context.Context, tenantID string) (model.Preferences, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[tenantID]
	return p, ok, nil
}

func (m *Memory) SavePlannerConfig(ctx context.Context, tenantID string, prefs model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[tenantID] = prefs
	return nil
}
