package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pajamadot/storyforge/internal/events"
)

const (
	// Buffered events replayed to a client on connect.
	replayCount = 50

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must stay under pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Editor hosts connect from arbitrary origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEventsHandler streams edit events to WebSocket clients, priming each
// connection with the most recent buffered events.
func wsEventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	sub := events.Subscribe()
	defer func() {
		events.Unsubscribe(sub)
		conn.Close()
	}()

	for _, e := range events.RecentEvents(replayCount) {
		if !writeEvent(conn, e) {
			return
		}
	}

	// Reader drains pongs and notices the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-sub:
			if !ok || !writeEvent(conn, e) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeEvent sends one event as a text frame. A false return means the
// connection is no longer usable.
func writeEvent(conn *websocket.Conn, e events.Event) bool {
	data, err := json.Marshal(e)
	if err != nil {
		return true // skip the unmarshalable event, keep the connection
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws write failed: %v", err)
		return false
	}
	return true
}
