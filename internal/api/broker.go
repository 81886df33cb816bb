package api

import (
	"sync"
)

// SSEEvent is one itinerary event fanned out to stream subscribers.
type SSEEvent struct {
	Type string
	Data map[string]any
}

// Broker is the in-process event fan-out, keyed by itinerary ID.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SSEEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(itineraryID string) chan SSEEvent {
	ch := make(chan SSEEvent, 8)
	b.mu.Lock()
	if b.subs[itineraryID] == nil {
		b.subs[itineraryID] = map[chan SSEEvent]struct{}{}
	}
	b.subs[itineraryID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(itineraryID string, ch chan SSEEvent) {
	b.mu.Lock()
	if m := b.subs[itineraryID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, itineraryID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(itineraryID string, evt SSEEvent) {
	b.mu.Lock()
	m := b.subs[itineraryID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
