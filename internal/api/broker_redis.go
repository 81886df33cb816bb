package api

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
	Subscribe(itineraryID string) chan SSEEvent
	Unsubscribe(itineraryID string, ch chan SSEEvent)
	Publish(itineraryID string, evt SSEEvent)
}

// In-memory broker in broker.go satisfies EventBroker.

// RedisBroker implements EventBroker over Redis Pub/Sub so multiple API
// instances see each other's itinerary events.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt)}, nil
}

func (b *RedisBroker) Subscribe(itineraryID string) chan SSEEvent {
	ch := make(chan SSEEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(itineraryID))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt SSEEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(itineraryID string, ch chan SSEEvent) {
	// The pub/sub goroutine exits when its channel closes on connection
	// loss; closing the delivery channel is enough here.
	close(ch)
}

func (b *RedisBroker) Publish(itineraryID string, evt SSEEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(itineraryID), data).Err()
}

func (b *RedisBroker) chanName(itineraryID string) string { return "itinerary:" + itineraryID }
