package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripweaver/internal/config"
	"tripweaver/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.Config{Port: "0", AuthMode: "dev"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func seedTestActivities(t *testing.T, s *Server) {
	t.Helper()
	body := []byte(`{"tenantId":"t_demo","activities":[
		{"name":"City Museum","category":"museum","durationHours":2,"price":15,"location":{"lat":48.8606,"lng":2.3376}},
		{"name":"Old Bistro","category":"food","durationHours":1.5,"price":30,"location":{"lat":48.8610,"lng":2.3400}},
		{"name":"River Cruise","category":"tour","durationHours":2,"price":25,"location":{"lat":48.8590,"lng":2.3450}},
		{"name":"Central Park","category":"nature","durationHours":1.5,"price":0,"location":{"lat":48.8650,"lng":2.3210}}
	]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.ActivitiesHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("seed activities: got %d: %s", rr.Code, rr.Body.String())
	}
}

func planTestItinerary(t *testing.T, s *Server) model.Itinerary {
	t.Helper()
	body := []byte(`{"destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-03","budget":300}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.PlanHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("plan: got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Itinerary model.Itinerary `json:"itinerary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("plan decode: %v", err)
	}
	return resp.Itinerary
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestActivitiesImportAndList(t *testing.T) {
	s := newTestServer(t)
	seedTestActivities(t, s)

	rr := httptest.NewRecorder()
	s.ActivitiesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/activities?category=food", nil))
	if rr.Code != 200 {
		t.Fatalf("list: got %d", rr.Code)
	}
	var resp struct {
		Items []model.ActivityOut `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Activity.Name != "Old Bistro" {
		t.Fatalf("filtered list: %+v", resp.Items)
	}
}

func TestPlanBuildsAndStoresItinerary(t *testing.T) {
	s := newTestServer(t)
	seedTestActivities(t, s)
	it := planTestItinerary(t, s)
	if it.ID == "" || it.Version != 1 {
		t.Fatalf("itinerary meta: %+v", it)
	}
	if len(it.Days) != 3 {
		t.Fatalf("days: got %d, want 3", len(it.Days))
	}

	// The stored copy must be retrievable.
	rr := httptest.NewRecorder()
	s.ItineraryByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/itineraries/"+it.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get itinerary: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.ItinerariesIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/itineraries", nil))
	if rr.Code != 200 {
		t.Fatalf("list itineraries: got %d", rr.Code)
	}
}

func TestPlanValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []string{
		`{"startDate":"2026-06-01","endDate":"2026-06-03","budget":100}`,                          // no destination
		`{"destination":"Paris","startDate":"06/01/2026","endDate":"2026-06-03","budget":100}`,    // bad date
		`{"destination":"Paris","startDate":"2026-06-03","endDate":"2026-06-01","budget":100}`,    // inverted range
		`{"destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-03","budget":0}`,      // no budget
		`{"destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-03","budget":100,"preferences":{"scheduleType":"frantic"}}`, // bad schedule type
	}
	for i, body := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/itineraries/plan", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		s.PlanHandler(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("case %d: got %d, want 400", i, rr.Code)
		}
	}
}

func TestPlanUnknownLockedRejected(t *testing.T) {
	s := newTestServer(t)
	seedTestActivities(t, s)
	body := []byte(`{"destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-02","budget":100,"locked":["Ghost Tour"]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.PlanHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestPlanForbiddenForTraveler(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-02","budget":100}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries/plan", bytes.NewReader(body))
	req.Header.Set("X-Role", "traveler")
	s.PlanHandler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", rr.Code)
	}
}

func TestRefineLockAndExclude(t *testing.T) {
	s := newTestServer(t)
	seedTestActivities(t, s)
	it := planTestItinerary(t, s)

	body := []byte(`{"lock":["City Museum"],"exclude":["Old Bistro"]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries/"+it.ID+"/refine", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.ItineraryByIDHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("refine: got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Itinerary model.Itinerary `json:"itinerary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Itinerary.Version != 2 {
		t.Fatalf("version: got %d, want 2", resp.Itinerary.Version)
	}
	if len(resp.Itinerary.Days) == 0 || len(resp.Itinerary.Days[0].Activities) == 0 {
		t.Fatal("refined itinerary has no scheduled activities")
	}
	if resp.Itinerary.Days[0].Activities[0].Name != "City Museum" {
		t.Fatalf("locked seed: got %q", resp.Itinerary.Days[0].Activities[0].Name)
	}
	for _, d := range resp.Itinerary.Days {
		for _, a := range d.Activities {
			if a.Name == "Old Bistro" {
				t.Fatal("excluded activity still scheduled")
			}
		}
	}
}

func TestItineraryNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ItineraryByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/itineraries/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"activities":[
		{"name":"a","category":"museum","durationHours":2,"price":10,"location":{"lat":48.8566,"lng":2.3522}},
		{"name":"b","category":"museum","durationHours":1,"price":0,"location":{"lat":48.8570,"lng":2.3530}}
	],"preferences":{"interests":["museum"],"scheduleType":"balanced"}}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/suggestions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.SuggestionsHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("suggestions: got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Ranking      []json.RawMessage `json:"ranking"`
		Distribution map[string]int    `json:"distribution"`
		Clusters     [][]model.Activity `json:"clusters"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Ranking) != 2 || resp.Distribution["museum"] != 2 {
		t.Fatalf("ranking/distribution: %+v", resp)
	}
	if len(resp.Clusters) != 1 || len(resp.Clusters[0]) != 2 {
		t.Fatalf("clusters: %+v", resp.Clusters)
	}
}

func TestPlannerConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)

	// Unset config falls back to the baseline.
	rr := httptest.NewRecorder()
	s.PlannerConfigHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/planner/config", nil))
	if rr.Code != 200 {
		t.Fatalf("get default: got %d", rr.Code)
	}
	var prefs model.Preferences
	_ = json.Unmarshal(rr.Body.Bytes(), &prefs)
	if prefs.ScheduleType != model.ScheduleBalanced {
		t.Fatalf("default scheduleType: %q", prefs.ScheduleType)
	}

	put := []byte(`{"interests":["food"],"scheduleType":"packed","maxHoursPerDay":10}`)
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/planner/config", bytes.NewReader(put))
	req.Header.Set("Content-Type", "application/json")
	s.PlannerConfigHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("put: got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.PlannerConfigHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/planner/config", nil))
	_ = json.Unmarshal(rr.Body.Bytes(), &prefs)
	if prefs.ScheduleType != model.SchedulePacked || len(prefs.Interests) != 1 {
		t.Fatalf("after put: %+v", prefs)
	}
}

func TestSubscriptionsLifecycle(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"url":"http://example.com/hook","events":["itinerary.generated"],"secret":"s"}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.SubscriptionsHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}
	var sub model.Subscription
	_ = json.Unmarshal(rr.Body.Bytes(), &sub)
	if sub.ID == "" || sub.Secret != "" {
		t.Fatalf("created sub must have id and no secret: %+v", sub)
	}

	rr = httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil))
	var list struct {
		Items []model.Subscription `json:"items"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if len(list.Items) != 1 {
		t.Fatalf("list: %+v", list.Items)
	}

	rr = httptest.NewRecorder()
	s.SubscriptionByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
}

func TestSubscriptionRequiresURLAndEvents(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader([]byte(`{"url":""}`)))
	req.Header.Set("Content-Type", "application/json")
	s.SubscriptionsHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestWebhookDeliveriesAdminOnly(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/webhook-deliveries", nil)
	req.Header.Set("X-Role", "planner")
	s.WebhookDeliveriesHandler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.WebhookDeliveriesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/webhook-deliveries", nil))
	if rr.Code != 200 {
		t.Fatalf("admin list: got %d", rr.Code)
	}
}

func TestPlanEmitsItineraryEvent(t *testing.T) {
	s := newTestServer(t)
	seedTestActivities(t, s)

	// Subscribe to everything, then plan; a delivery must be queued.
	body := []byte(`{"url":"http://example.com/hook","events":["*"]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.SubscriptionsHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("subscribe: got %d", rr.Code)
	}

	planTestItinerary(t, s)

	rr = httptest.NewRecorder()
	s.WebhookDeliveriesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/webhook-deliveries?status=pending", nil))
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if len(resp.Items) == 0 {
		t.Fatal("no pending webhook delivery after planning")
	}
	found := false
	for _, it := range resp.Items {
		if it["eventType"] == "itinerary.generated" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no itinerary.generated delivery: %+v", resp.Items)
	}
}
