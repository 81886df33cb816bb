package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tripweaver/internal/api"
	"tripweaver/internal/config"
	"tripweaver/internal/integrations/csvfile"
	"tripweaver/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	srvDeps, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	metrics.RegisterDefault()

	if cfg.CSVPath != "" {
		seedActivities(srvDeps, cfg.CSVPath)
	}

	mux := http.NewServeMux()

	// Activities
	mux.HandleFunc("/v1/activities", srvDeps.ActivitiesHandler)

	// Planning
	mux.HandleFunc("/v1/itineraries/plan", srvDeps.PlanHandler)
	mux.HandleFunc("/v1/itineraries", srvDeps.ItinerariesIndexHandler)
	mux.HandleFunc("/v1/itineraries/", srvDeps.ItineraryByIDHandler) // includes /refine, /events/stream
	mux.HandleFunc("/v1/suggestions", srvDeps.SuggestionsHandler)
	mux.HandleFunc("/v1/planner/config", srvDeps.PlannerConfigHandler)

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

	// Admin
	mux.HandleFunc("/v1/admin/webhook-deliveries", srvDeps.WebhookDeliveriesHandler)
	mux.HandleFunc("/v1/admin/webhook-deliveries/", srvDeps.WebhookDeliveryRetryHandler)

	// WebSocket subscriptions endpoint
	mux.HandleFunc("/v1/events/ws", srvDeps.EventsWSHandler)

	// Health and introspection
	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
	mux.HandleFunc("/debug", srvDeps.DebugJSON)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	limiter := api.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	handler := logMiddleware(metricsMiddleware(limiter.Limit(mux)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on :%s", cfg.Port)
	if srvDeps.Pub != nil {
		worker := srvDeps.NewWebhookWorker()
		worker.Start()
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func seedActivities(srvDeps *api.Server, path string) {
	src := csvfile.New(path)
	activities, err := src.FetchActivities("")
	if err != nil {
		log.Printf("seed: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, created, skipped, err := srvDeps.Store.CreateActivities(ctx, "t_demo", activities)
	if err != nil {
		log.Printf("seed: import failed: %v", err)
		return
	}
	log.Printf("seed: %s imported (created=%d skipped=%d)", path, created, skipped)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}

// statusRecorder captures the response code for metrics. WriteHeader may
// never be called on streaming endpoints; the default 200 stands then.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades need the raw ResponseWriter (http.Hijacker).
		if r.URL.Path == "/v1/events/ws" {
			next.ServeHTTP(w, r)
			return
		}
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		status := strconv.Itoa(sr.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}
