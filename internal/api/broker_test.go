package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	id := "it1"
	ch := b.Subscribe(id)

	evt := SSEEvent{Type: "itinerary.generated", Data: map[string]any{"itineraryId": id}}
	b.Publish(id, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["itineraryId"].(string) != id {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(id, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerIsolatesItineraries(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("it1")
	defer b.Unsubscribe("it1", ch)

	b.Publish("it2", SSEEvent{Type: "itinerary.refined"})
	select {
	case evt := <-ch:
		t.Fatalf("received event for another itinerary: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
