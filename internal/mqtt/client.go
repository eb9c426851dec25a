// Package mqtt mirrors edit events onto an MQTT topic so external
// tooling (collaboration views, preview clients) can follow document
// changes without polling the API.
package mqtt

import (
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// ConnectTimeoutError indicates the broker did not answer in time.
type ConnectTimeoutError struct{}

func (e *ConnectTimeoutError) Error() string { return "mqtt connect timed out" }

// PublishTimeoutError indicates a publish did not complete in time.
type PublishTimeoutError struct{ Topic string }

func (e *PublishTimeoutError) Error() string {
	return fmt.Sprintf("mqtt publish to %s timed out", e.Topic)
}

// Client wraps the Paho MQTT client.
type Client struct {
	client paho.Client
	mu     sync.Mutex
}

// BrokerURL returns the MQTT broker URL from env or default.
func BrokerURL() string {
	if url := os.Getenv("MQTT_URL"); url != "" {
		return url
	}
	return "tcp://localhost:1883"
}

// NewClient creates a new MQTT client for the given broker but does not
// connect. An empty brokerURL falls back to BrokerURL().
func NewClient(brokerURL, clientID string) *Client {
	if brokerURL == "" {
		brokerURL = BrokerURL()
	}
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	return &Client{
		client: paho.NewClient(opts),
	}
}

// Connect attempts to connect to the broker.
// Returns an error if connection fails, but does not block indefinitely.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return &ConnectTimeoutError{}
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

// Publish sends a payload to a topic at QoS 1.
func (c *Client) Publish(topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return &PublishTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(1000)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
