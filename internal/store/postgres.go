package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tripweaver/internal/model"
)

// Postgres persists planner state via database/sql with the pgx driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Migrate creates the schema if missing. Idempotent; intended for dev
// and small deployments, run on startup.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			content_key TEXT NOT NULL,
			body JSONB NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (tenant_id, content_key)
		)`,
		`CREATE TABLE IF NOT EXISTS itineraries (
			id UUID PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INT NOT NULL DEFAULT 1,
			body JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			url TEXT NOT NULL,
			events JSONB NOT NULL,
			secret TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id UUID PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			subscription_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT NOT NULL DEFAULT '',
			payload BYTEA NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_error TEXT NOT NULL DEFAULT '',
			response_code INT NOT NULL DEFAULT 0,
			latency_ms INT NOT NULL DEFAULT 0,
			delivered_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS planner_config (
			tenant_id TEXT PRIMARY KEY,
			preferences JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_due ON webhook_deliveries (status, next_attempt_at)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) CreateActivities(ctx context.Context, tenantID string, activities []model.Activity) (string, int, int, error) {
	importID := fmt.Sprintf("imp_%d", time.Now().UnixNano())
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	created, skipped := 0, 0
	for _, a := range activities {
		body, err := json.Marshal(a)
		if err != nil {
			return "", created, skipped, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO activities (id, tenant_id, content_key, body, category)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (tenant_id, content_key) DO NOTHING`,
			uuid.New(), tenantID, a.Key(), body, a.Category)
		if err != nil {
			return "", created, skipped, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		} else {
			skipped++
		}
	}
	if err := tx.Commit(); err != nil {
		return "", created, skipped, err
	}
	return importID, created, skipped, nil
}

func (p *Postgres) ListActivities(ctx context.Context, tenantID, category, cursor string, limit int) ([]model.ActivityOut, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, body FROM activities WHERE tenant_id = $1`
	args := []any{tenantID}
	if category != "" {
		args = append(args, category)
		q += fmt.Sprintf(" AND lower(category) = lower($%d)", len(args))
	}
	if cursor != "" {
		args = append(args, cursor)
		q += fmt.Sprintf(" AND id > $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []model.ActivityOut{}
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, "", err
		}
		var a model.Activity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, "", err
		}
		out = append(out, model.ActivityOut{ID: id, TenantID: tenantID, Activity: a})
	}
	next := ""
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) SaveItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error) {
	it.ID = uuid.New().String()
	it.Version = 1
	it.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(it)
	if err != nil {
		return model.Itinerary{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO itineraries (id, tenant_id, version, body) VALUES ($1, $2, $3, $4)`,
		it.ID, it.TenantID, it.Version, body)
	if err != nil {
		return model.Itinerary{}, err
	}
	return it, nil
}

func (p *Postgres) GetItinerary(ctx context.Context, tenantID, id string) (model.Itinerary, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT body FROM itineraries WHERE id = $1 AND tenant_id = $2`, id, tenantID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Itinerary{}, ErrNotFound
	}
	if err != nil {
		return model.Itinerary{}, err
	}
	var it model.Itinerary
	if err := json.Unmarshal(body, &it); err != nil {
		return model.Itinerary{}, err
	}
	return it, nil
}

func (p *Postgres) ListItineraries(ctx context.Context, tenantID, cursor string, limit int) ([]model.Itinerary, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT body FROM itineraries WHERE tenant_id = $1`
	args := []any{tenantID}
	if cursor != "" {
		args = append(args, cursor)
		q += fmt.Sprintf(" AND id > $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []model.Itinerary{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, "", err
		}
		var it model.Itinerary
		if err := json.Unmarshal(body, &it); err != nil {
			return nil, "", err
		}
		out = append(out, it)
	}
	next := ""
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) UpdateItinerary(ctx context.Context, it model.Itinerary) (model.Itinerary, error) {
	existing, err := p.GetItinerary(ctx, it.TenantID, it.ID)
	if err != nil {
		return model.Itinerary{}, err
	}
	it.Version = existing.Version + 1
	it.CreatedAt = existing.CreatedAt
	body, err := json.Marshal(it)
	if err != nil {
		return model.Itinerary{}, err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE itineraries SET version = $1, body = $2 WHERE id = $3 AND tenant_id = $4`,
		it.Version, body, it.ID, it.TenantID)
	if err != nil {
		return model.Itinerary{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Itinerary{}, ErrNotFound
	}
	return it, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	sub := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	events, err := json.Marshal(req.Events)
	if err != nil {
		return model.Subscription{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.TenantID, sub.URL, events, sub.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, url, events, secret FROM subscriptions
		 WHERE tenant_id = $1 AND (events @> to_jsonb(ARRAY[$2::text]) OR events @> to_jsonb(ARRAY['*']))`,
		tenantID, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows, tenantID)
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, url, events, secret FROM subscriptions WHERE tenant_id = $1`
	args := []any{tenantID}
	if cursor != "" {
		args = append(args, cursor)
		q += fmt.Sprintf(" AND id > $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	subs, err := scanSubscriptions(rows, tenantID)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(subs) == limit {
		next = subs[len(subs)-1].ID
	}
	return subs, next, nil
}

func scanSubscriptions(rows *sql.Rows, tenantID string) ([]model.Subscription, error) {
	out := []model.Subscription{}
	for rows.Next() {
		var sub model.Subscription
		var events []byte
		if err := rows.Scan(&sub.ID, &sub.URL, &events, &sub.Secret); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &sub.Events); err != nil {
			return nil, err
		}
		sub.TenantID = tenantID
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, tenantID, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, tenant_id, subscription_id, event_type, url, secret, payload, status, attempts
		 FROM webhook_deliveries
		 WHERE status = 'pending' AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WebhookDelivery{}
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx,
			`UPDATE webhook_deliveries
			 SET attempts = attempts + 1, status = 'delivered', delivered_at = now(),
			     last_error = $2, response_code = $3, latency_ms = $4
			 WHERE id = $1`, id, lastError, responseCode, latencyMs)
		return err
	}
	next := time.Now()
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET attempts = attempts + 1, next_attempt_at = $2,
		     last_error = $3, response_code = $4, latency_ms = $5
		 WHERE id = $1`, id, next, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET attempts = attempts + 1, status = 'failed',
		     last_error = $2, response_code = $3, latency_ms = $4
		 WHERE id = $1`, id, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, event_type, url, status, attempts, last_error, response_code, latency_ms
	      FROM webhook_deliveries WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if cursor != "" {
		args = append(args, cursor)
		q += fmt.Sprintf(" AND id > $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []map[string]any{}
	lastID := ""
	for rows.Next() {
		var id, eventType, url, st, lastErr string
		var attempts, code, latency int
		if err := rows.Scan(&id, &eventType, &url, &st, &attempts, &lastErr, &code, &latency); err != nil {
			return nil, "", err
		}
		out = append(out, map[string]any{
			"id": id, "eventType": eventType, "url": url, "status": st,
			"attempts": attempts, "lastError": lastErr, "responseCode": code, "latencyMs": latency,
		})
		lastID = id
	}
	next := ""
	if len(out) == limit {
		next = lastID
	}
	return out, next, rows.Err()
}

func (p *Postgres) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status = 'pending', next_attempt_at = now()
		 WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetPlannerConfig(ctx context.Context, tenantID string) (model.Preferences, bool, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT preferences FROM planner_config WHERE tenant_id = $1`, tenantID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, false, nil
	}
	if err != nil {
		return model.Preferences{}, false, err
	}
	var prefs model.Preferences
	if err := json.Unmarshal(body, &prefs); err != nil {
		return model.Preferences{}, false, err
	}
	return prefs, true, nil
}

func (p *Postgres) SavePlannerConfig(ctx context.Context, tenantID string, prefs model.Preferences) error {
	body, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO planner_config (tenant_id, preferences) VALUES ($1, $2)
		 ON CONFLICT (tenant_id) DO UPDATE SET preferences = EXCLUDED.preferences`,
		tenantID, body)
	return err
}
