// Package events is the edit-telemetry spine of the service: every
// document operation the embedding layer performs is recorded here,
// buffered for late subscribers, fanned out to live ones, and optionally
// appended to Postgres. The story core itself never emits; the embedding
// layer derives events from mutation results.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pajamadot/storyforge/internal/storage/postgres"
)

var buffer = NewRingBuffer(256)

var (
	pgClient      *postgres.Client
	pgMu          sync.RWMutex
	pgErrorLogged bool
)

// SetPostgresClient enables event persistence. Pass nil to disable.
func SetPostgresClient(client *postgres.Client) {
	pgMu.Lock()
	pgClient = client
	pgMu.Unlock()
}

// GetPostgresClient returns the current Postgres client (for API queries).
func GetPostgresClient() *postgres.Client {
	pgMu.RLock()
	defer pgMu.RUnlock()
	return pgClient
}

// Event is a single edit-telemetry record.
type Event struct {
	Timestamp string         `json:"ts"`
	Level     string         `json:"level"`
	Name      string         `json:"event"`
	Message   string         `json:"msg,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Emit records an event: ring buffer, live subscribers, and Postgres when
// configured. Unknown event names are rejected.
func Emit(level, name, msg string, fields map[string]any) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.Add(e)
	broadcast(e)

	pgMu.RLock()
	client := pgClient
	errorLogged := pgErrorLogged
	pgMu.RUnlock()

	if client != nil {
		if err := client.Append(ts, level, name, msg, fields); err != nil {
			// Log the failure once to avoid spam. Added straight to the
			// ring buffer, not through Emit, so a persistently failing
			// database cannot recurse.
			if !errorLogged {
				pgMu.Lock()
				if !pgErrorLogged {
					pgErrorLogged = true
					pgMu.Unlock()
					buffer.Add(Event{
						Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
						Level:     "error",
						Name:      "system.error",
						Message:   "postgres append failed",
						Fields:    map[string]any{"error": err.Error()},
					})
				} else {
					pgMu.Unlock()
				}
			}
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return b, nil
}

// Snapshot returns all buffered events in order.
func Snapshot() []Event {
	return buffer.Snapshot()
}

// Clear resets the event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}
