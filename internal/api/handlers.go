package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tripweaver/internal/buildinfo"
	"tripweaver/internal/geo"
	"tripweaver/internal/metrics"
	"tripweaver/internal/model"
	"tripweaver/internal/plan"
	"tripweaver/internal/refine"
	"tripweaver/internal/store"
	"tripweaver/internal/webhooks"
)

// ActivitiesHandler handles POST/GET /v1/activities
func (s *Server) ActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			TenantID   string           `json:"tenantId"`
			Activities []model.Activity `json:"activities"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" {
			req.TenantID = s.getPrincipal(r).Tenant
		}
		imp, created, skipped, err := s.Store.CreateActivities(r.Context(), req.TenantID, req.Activities)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Import failed", err.Error(), r.URL.Path)
			return
		}
		s.Pub.Emit(r.Context(), req.TenantID, webhooks.EventActivitiesImported, map[string]any{"importId": imp, "created": created, "skipped": skipped})
		writeJSON(w, http.StatusAccepted, map[string]any{"importId": imp, "created": created, "skipped": skipped})
	case http.MethodGet:
		p := s.getPrincipal(r)
		category := r.URL.Query().Get("category")
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListActivities(r.Context(), p.Tenant, category, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List activities failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PlanHandler handles POST /v1/itineraries/plan
func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !(p.IsAdmin() || p.Role == "planner") {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = p.Tenant
	}
	start, end, err := validatePlanRequest(&req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid plan request", err.Error(), r.URL.Path)
		return
	}
	prefs, err := s.resolvePreferences(r.Context(), req.TenantID, req.Preferences)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Load preferences failed", err.Error(), r.URL.Path)
		return
	}
	prefs.Budget = req.Budget

	candidates := req.Activities
	if len(candidates) == 0 {
		candidates, err = s.loadAllActivities(r.Context(), req.TenantID)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Load activities failed", err.Error(), r.URL.Path)
			return
		}
	}

	trip := model.Trip{Destination: req.Destination, StartDate: start, EndDate: end, Budget: req.Budget, Interests: prefs.Interests}
	mgr := refine.NewManager(trip, candidates, prefs)
	for _, name := range req.Excluded {
		if a, ok := findActivityByName(candidates, name); ok {
			_ = mgr.Exclude(a)
		}
	}
	var unknownLocks []string
	for _, name := range req.Locked {
		a, ok := findActivityByName(candidates, name)
		if !ok {
			unknownLocks = append(unknownLocks, name)
			continue
		}
		if err := mgr.Lock(a, time.Time{}); err != nil {
			writeProblem(w, http.StatusBadRequest, "Lock failed", err.Error(), r.URL.Path)
			return
		}
	}
	if len(unknownLocks) > 0 {
		writeProblem(w, http.StatusBadRequest, "Unknown locked activities", strings.Join(unknownLocks, ", "), r.URL.Path)
		return
	}

	began := time.Now()
	days, missing := mgr.Regenerate()
	metrics.SchedulingDuration.Observe(time.Since(began).Seconds())
	metrics.ItinerariesBuilt.WithLabelValues(scheduleLabel(prefs.ScheduleType)).Inc()

	it := model.Itinerary{
		TenantID:    req.TenantID,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Preferences: prefs,
		Days:        days,
		Locked:      req.Locked,
		Excluded:    req.Excluded,
	}
	saved, err := s.Store.SaveItinerary(r.Context(), it)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save itinerary failed", err.Error(), r.URL.Path)
		return
	}
	s.Pub.Emit(r.Context(), req.TenantID, webhooks.EventItineraryGenerated, itinerarySummary(saved))
	s.Broker.Publish(saved.ID, SSEEvent{Type: webhooks.EventItineraryGenerated, Data: itinerarySummary(saved)})

	writeJSON(w, http.StatusOK, map[string]any{
		"itinerary":     saved,
		"missingLocked": activityNames(missing),
		"suggestions":   plan.SuggestInterestBalance(mgr.Available(), prefs.Interests),
	})
}

// ItinerariesIndexHandler handles GET /v1/itineraries
func (s *Server) ItinerariesIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListItineraries(r.Context(), p.Tenant, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List itineraries failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// ItineraryByIDHandler handles /v1/itineraries/{id}[/refine|/events/stream]
func (s *Server) ItineraryByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/itineraries/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Missing itinerary id", "", r.URL.Path)
		return
	}
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		p := s.getPrincipal(r)
		it, err := s.Store.GetItinerary(r.Context(), p.Tenant, id)
		if err != nil {
			s.writeStoreError(w, r, err, "Get itinerary failed")
			return
		}
		writeJSON(w, http.StatusOK, it)
	case len(parts) == 2 && parts[1] == "refine" && r.Method == http.MethodPost:
		s.refineItinerary(w, r, id)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream" && r.Method == http.MethodGet:
		s.streamItineraryEvents(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// refineItinerary applies lock/exclusion changes and regenerates.
func (s *Server) refineItinerary(w http.ResponseWriter, r *http.Request, id string) {
	p := s.getPrincipal(r)
	if !(p.IsAdmin() || p.Role == "planner") {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var req model.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	it, err := s.Store.GetItinerary(r.Context(), p.Tenant, id)
	if err != nil {
		s.writeStoreError(w, r, err, "Get itinerary failed")
		return
	}
	start, _ := time.Parse(dateLayout, it.StartDate)
	end, _ := time.Parse(dateLayout, it.EndDate)
	candidates, err := s.loadAllActivities(r.Context(), p.Tenant)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Load activities failed", err.Error(), r.URL.Path)
		return
	}

	locked := applyNameSet(it.Locked, req.Lock, req.Unlock)
	excluded := applyNameSet(it.Excluded, req.Exclude, req.Unexclude)

	trip := model.Trip{Destination: it.Destination, StartDate: start, EndDate: end, Budget: it.Budget, Interests: it.Preferences.Interests}
	mgr := refine.NewManager(trip, candidates, it.Preferences)
	for _, name := range excluded {
		if a, ok := findActivityByName(candidates, name); ok {
			_ = mgr.Exclude(a)
		}
	}
	for _, name := range locked {
		if a, ok := findActivityByName(candidates, name); ok {
			if err := mgr.Lock(a, time.Time{}); err != nil {
				writeProblem(w, http.StatusBadRequest, "Lock failed", err.Error(), r.URL.Path)
				return
			}
		}
	}

	began := time.Now()
	days, missing := mgr.Regenerate()
	metrics.SchedulingDuration.Observe(time.Since(began).Seconds())

	it.Days = days
	it.Locked = locked
	it.Excluded = excluded
	updated, err := s.Store.UpdateItinerary(r.Context(), it)
	if err != nil {
		s.writeStoreError(w, r, err, "Update itinerary failed")
		return
	}
	s.Pub.Emit(r.Context(), p.Tenant, webhooks.EventItineraryRefined, itinerarySummary(updated))
	s.Broker.Publish(updated.ID, SSEEvent{Type: webhooks.EventItineraryRefined, Data: itinerarySummary(updated)})
	writeJSON(w, http.StatusOK, map[string]any{"itinerary": updated, "missingLocked": activityNames(missing)})
}

// streamItineraryEvents serves an SSE stream of events for one itinerary.
func (s *Server) streamItineraryEvents(w http.ResponseWriter, r *http.Request, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	// initial heartbeat so clients know the stream is live
	fmt.Fprintf(w, ": heartbeat\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
		}
	}
}

// SuggestionsHandler handles POST /v1/suggestions: a preview ranking
// plus interest-balance advice and proximity clusters, without building
// or persisting an itinerary.
func (s *Server) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	var req struct {
		Activities    []model.Activity   `json:"activities,omitempty"`
		Preferences   *model.Preferences `json:"preferences,omitempty"`
		MaxDistanceKm float64            `json:"maxDistanceKm,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.Preferences != nil {
		if err := validatePreferences(req.Preferences); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid preferences", err.Error(), r.URL.Path)
			return
		}
	}
	prefs, err := s.resolvePreferences(r.Context(), p.Tenant, req.Preferences)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Load preferences failed", err.Error(), r.URL.Path)
		return
	}
	activities := req.Activities
	if len(activities) == 0 {
		activities, err = s.loadAllActivities(r.Context(), p.Tenant)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Load activities failed", err.Error(), r.URL.Path)
			return
		}
	}
	maxKm := req.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = 2.0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ranking":      plan.ScoreAll(activities, prefs, nil),
		"balance":      plan.SuggestInterestBalance(activities, prefs.Interests),
		"distribution": plan.CategoryDistribution(activities),
		"clusters":     geo.ClusterByProximity(activities, maxKm),
	})
}

// PlannerConfigHandler handles GET/PUT /v1/planner/config
func (s *Server) PlannerConfigHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodGet:
		prefs, ok, err := s.Store.GetPlannerConfig(r.Context(), p.Tenant)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get config failed", err.Error(), r.URL.Path)
			return
		}
		if !ok {
			prefs = model.DefaultPreferences()
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPut:
		if !p.IsAdmin() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
			return
		}
		var prefs model.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validatePreferences(&prefs); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid preferences", err.Error(), r.URL.Path)
			return
		}
		if err := s.Store.SavePlannerConfig(r.Context(), p.Tenant, prefs); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save config failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		if !p.IsAdmin() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
			return
		}
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" {
			req.TenantID = p.Tenant
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events required", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		for i := range items {
			items[i].Secret = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil {
		s.writeStoreError(w, r, err, "Delete subscription failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WebhookDeliveriesHandler handles GET /v1/admin/webhook-deliveries
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	status := r.URL.Query().Get("status")
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListWebhookDeliveries(r.Context(), p.Tenant, status, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// WebhookDeliveryRetryHandler handles POST /v1/admin/webhook-deliveries/{id}/retry
func (s *Server) WebhookDeliveryRetryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/webhook-deliveries/")
	id := strings.TrimSuffix(rest, "/retry")
	if err := s.Store.RetryWebhookDelivery(r.Context(), p.Tenant, id); err != nil {
		s.writeStoreError(w, r, err, "Retry failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "pending"})
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler reports readiness.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// DebugJSON reports build and effective config for troubleshooting.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"port":            s.Cfg.Port,
			"authMode":        s.Cfg.AuthMode,
			"rateRps":         s.Cfg.RateRPS,
			"rateBurst":       s.Cfg.RateBurst,
			"hasDatabaseUrl":  s.Cfg.DatabaseURL != "",
			"hasRedisUrl":     s.Cfg.RedisURL != "",
			"hasActivitiesCsv": s.Cfg.CSVPath != "",
		},
	})
}

// Helpers

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, title string) {
	if err == store.ErrNotFound {
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
		return
	}
	writeProblem(w, http.StatusInternalServerError, title, err.Error(), r.URL.Path)
}

// resolvePreferences picks explicit request preferences, then the
// tenant's stored defaults, then the built-in baseline. Zero hour
// bounds are filled from the baseline so the scheduler always has a
// positive daily ceiling.
func (s *Server) resolvePreferences(ctx context.Context, tenantID string, explicit *model.Preferences) (model.Preferences, error) {
	base := model.DefaultPreferences()
	prefs := base
	if explicit != nil {
		prefs = *explicit
	} else {
		stored, ok, err := s.Store.GetPlannerConfig(ctx, tenantID)
		if err != nil {
			return model.Preferences{}, err
		}
		if ok {
			prefs = stored
		}
	}
	if prefs.ScheduleType == "" {
		prefs.ScheduleType = base.ScheduleType
	}
	if prefs.MaxHoursPerDay == 0 {
		prefs.MaxHoursPerDay = base.MaxHoursPerDay
	}
	if prefs.MinHoursPerDay == 0 {
		prefs.MinHoursPerDay = base.MinHoursPerDay
	}
	return prefs, nil
}

func (s *Server) loadAllActivities(ctx context.Context, tenantID string) ([]model.Activity, error) {
	var out []model.Activity
	cursor := ""
	for {
		items, next, err := s.Store.ListActivities(ctx, tenantID, "", cursor, 500)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, it.Activity)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	return out, nil
}

func findActivityByName(activities []model.Activity, name string) (model.Activity, bool) {
	for _, a := range activities {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return model.Activity{}, false
}

// applyNameSet adds then removes names, preserving first-seen order.
func applyNameSet(base, add, remove []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, name := range append(append([]string{}, base...), add...) {
		k := strings.ToLower(name)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, name)
	}
	if len(remove) == 0 {
		return out
	}
	drop := map[string]struct{}{}
	for _, name := range remove {
		drop[strings.ToLower(name)] = struct{}{}
	}
	kept := out[:0]
	for _, name := range out {
		if _, ok := drop[strings.ToLower(name)]; !ok {
			kept = append(kept, name)
		}
	}
	return kept
}

func activityNames(activities []model.Activity) []string {
	names := make([]string, 0, len(activities))
	for _, a := range activities {
		names = append(names, a.Name)
	}
	return names
}

func itinerarySummary(it model.Itinerary) map[string]any {
	days := 0
	activities := 0
	cost := 0.0
	for _, d := range it.Days {
		days++
		activities += len(d.Activities)
		cost += d.TotalCost()
	}
	return map[string]any{
		"itineraryId": it.ID,
		"version":     it.Version,
		"destination": it.Destination,
		"days":        days,
		"activities":  activities,
		"totalCost":   cost,
	}
}

func scheduleLabel(t string) string {
	switch t {
	case model.ScheduleRelaxed, model.SchedulePacked:
		return t
	default:
		return model.ScheduleBalanced
	}
}
