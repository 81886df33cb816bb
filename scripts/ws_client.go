// Package main runs a demo WebSocket client for itinerary events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Import a couple of activities so the planner has candidates.
	importBody := []byte(`{"tenantId":"t_demo","activities":[
		{"name":"City Museum","category":"museum","durationHours":2,"price":15,"location":{"lat":48.8606,"lng":2.3376}},
		{"name":"Old Town Walk","category":"tour","durationHours":1.5,"price":0,"location":{"lat":48.8566,"lng":2.3522}}
	]}`)
	impReq, _ := http.NewRequest(http.MethodPost, base+"/v1/activities", bytes.NewReader(importBody))
	impReq.Header.Set("Content-Type", "application/json")
	impReq.Header.Set("X-Tenant-Id", "t_demo")
	impReq.Header.Set("X-Role", "admin")
	if resp, err := http.DefaultClient.Do(impReq); err == nil {
		_ = resp.Body.Close()
	}

	// Build an itinerary.
	body := []byte(`{"tenantId":"t_demo","destination":"Paris","startDate":"2026-06-01","endDate":"2026-06-03","budget":300}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/itineraries/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var planResp struct {
		Itinerary struct {
			ID string `json:"id"`
		} `json:"itinerary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&planResp); err != nil {
		log.Fatal(err)
	}
	if planResp.Itinerary.ID == "" {
		log.Fatal("no itinerary returned")
	}
	itineraryID := planResp.Itinerary.ID
	log.Printf("Itinerary ID: %s", itineraryID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/events/ws"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	// connection_init
	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	// subscribe to itinerary events
	pl, _ := json.Marshal(map[string]any{"itineraryId": itineraryID})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger an event via refine
	time.Sleep(500 * time.Millisecond)
	refReq, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/itineraries/%s/refine", base, itineraryID), bytes.NewReader([]byte(`{"lock":["City Museum"]}`)))
	refReq.Header.Set("Content-Type", "application/json")
	refReq.Header.Set("X-Tenant-Id", "t_demo")
	refReq.Header.Set("X-Role", "admin")
	_, _ = http.DefaultClient.Do(refReq)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
