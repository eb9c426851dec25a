package mqtt

import (
	"encoding/json"
	"log"

	"github.com/pajamadot/storyforge/internal/events"
)

// Publisher is the narrow surface Bridge needs; satisfied by *Client.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Bridge forwards edit events to an MQTT topic.
type Bridge struct {
	pub   Publisher
	topic string
	sub   events.Subscriber
	done  chan struct{}
}

// NewBridge subscribes to the event broadcaster and returns a bridge
// publishing to the given topic.
func NewBridge(pub Publisher, topic string) *Bridge {
	return &Bridge{
		pub:   pub,
		topic: topic,
		sub:   events.Subscribe(),
		done:  make(chan struct{}),
	}
}

// Run forwards events until Stop is called. Publish failures are logged
// and the event is dropped; edit telemetry is best-effort on this path.
func (b *Bridge) Run() {
	for {
		select {
		case <-b.done:
			return
		case e, ok := <-b.sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				log.Printf("mqtt bridge: marshal event: %v", err)
				continue
			}
			if err := b.pub.Publish(b.topic, payload); err != nil {
				log.Printf("mqtt bridge: publish: %v", err)
			}
		}
	}
}

// Stop detaches the bridge from the broadcaster.
func (b *Bridge) Stop() {
	close(b.done)
	events.Unsubscribe(b.sub)
}
