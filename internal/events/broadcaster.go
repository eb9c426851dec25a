package events

import "sync"

// Subscriber is a channel that receives live events.
type Subscriber chan Event

// subscriberBuffer bounds how far a slow consumer may fall behind before
// it starts missing events.
const subscriberBuffer = 64

// broadcasterState fans events out to live consumers (WebSocket clients
// and the MQTT bridge).
type broadcasterState struct {
	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

var bcast = broadcasterState{subs: make(map[Subscriber]struct{})}

// Subscribe registers a live consumer and returns its channel.
func Subscribe() Subscriber {
	sub := make(Subscriber, subscriberBuffer)
	bcast.mu.Lock()
	bcast.subs[sub] = struct{}{}
	bcast.mu.Unlock()
	return sub
}

// Unsubscribe detaches a consumer and closes its channel.
func Unsubscribe(sub Subscriber) {
	bcast.mu.Lock()
	delete(bcast.subs, sub)
	bcast.mu.Unlock()
	close(sub)
}

// broadcast delivers an event to every subscriber without blocking;
// a subscriber with a full buffer misses the event.
func broadcast(e Event) {
	bcast.mu.RLock()
	defer bcast.mu.RUnlock()
	for sub := range bcast.subs {
		select {
		case sub <- e:
		default:
		}
	}
}

// SubscriberCount reports how many live consumers are attached.
func SubscriberCount() int {
	bcast.mu.RLock()
	defer bcast.mu.RUnlock()
	return len(bcast.subs)
}

// RecentEvents returns up to n of the most recent buffered events,
// oldest-first. n <= 0 means all of them.
func RecentEvents(n int) []Event {
	all := buffer.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}
