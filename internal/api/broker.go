package api

import (
	"sync"

	"iutesync/internal/model"
)

// SyncEvent is published after every completed sync, webhook- or
// poll-driven, and streamed to WebSocket subscribers.
type SyncEvent struct {
	ID          string       `json:"id"`
	IuteOrderID string       `json:"iuteOrderId"`
	Status      model.Status `json:"iuteStatus,omitempty"`
	OK          bool         `json:"ok"`
	Reason      string       `json:"reason,omitempty"`
	TS          string       `json:"ts"`
}

// EventBroker fans sync events out to subscribers. Subscribing with an
// empty order id receives every event.
type EventBroker interface {
	Subscribe(orderID string) chan SyncEvent
	Unsubscribe(orderID string, ch chan SyncEvent)
	Publish(evt SyncEvent)
}

// Broker is the in-memory EventBroker used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SyncEvent]struct{} // orderID ("" = all) -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SyncEvent]struct{}{}}
}

func (b *Broker) Subscribe(orderID string) chan SyncEvent {
	ch := make(chan SyncEvent, 8)
	b.mu.Lock()
	if b.subs[orderID] == nil {
		b.subs[orderID] = map[chan SyncEvent]struct{}{}
	}
	b.subs[orderID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(orderID string, ch chan SyncEvent) {
	b.mu.Lock()
	if m := b.subs[orderID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, orderID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(evt SyncEvent) {
	b.mu.Lock()
	for _, key := range []string{evt.IuteOrderID, ""} {
		for ch := range b.subs[key] {
			select {
			case ch <- evt:
			default:
			}
		}
	}
	b.mu.Unlock()
}
