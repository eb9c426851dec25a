// Package api is the HTTP surface of the service: document transfer in
// the serialized text form, graph mutations, validation, summaries, and
// playthrough sessions. Mutation handlers derive edit events from
// operation results and schedule debounced auto-saves; the story core
// itself does neither.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/pajamadot/storyforge/internal/asset"
	"github.com/pajamadot/storyforge/internal/cache"
	"github.com/pajamadot/storyforge/internal/codec"
	"github.com/pajamadot/storyforge/internal/debounce"
	"github.com/pajamadot/storyforge/internal/events"
	"github.com/pajamadot/storyforge/internal/player"
	"github.com/pajamadot/storyforge/internal/story"
)

// Server serves the document API over an injected cache store.
type Server struct {
	store        *cache.Store
	saveDebounce time.Duration

	mu     sync.Mutex
	savers map[string]*debounce.Debouncer
	plays  map[string]*player.Playthrough
}

// NewServer creates a server. saveDebounce is the auto-save quiet period
// applied after each mutation.
func NewServer(store *cache.Store, saveDebounce time.Duration) *Server {
	return &Server{
		store:        store,
		saveDebounce: saveDebounce,
		savers:       make(map[string]*debounce.Debouncer),
		plays:        make(map[string]*player.Playthrough),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /events", eventsHandler)
	mux.HandleFunc("GET /events/history", eventsHistoryHandler)
	mux.HandleFunc("GET /ws/events", wsEventsHandler)

	mux.HandleFunc("GET /documents/{id}", s.getDocument)
	mux.HandleFunc("PUT /documents/{id}", s.putDocument)
	mux.HandleFunc("POST /documents/{id}", s.createDocument)
	mux.HandleFunc("POST /documents/{id}/save", s.saveDocument)
	mux.HandleFunc("GET /documents/{id}/validate", s.validateDocument)
	mux.HandleFunc("GET /documents/{id}/summary", s.summarizeDocument)

	mux.HandleFunc("POST /documents/{id}/nodes", s.createNode)
	mux.HandleFunc("PATCH /documents/{id}/nodes/{nodeID}", s.updateNode)
	mux.HandleFunc("DELETE /documents/{id}/nodes/{nodeID}", s.deleteNode)
	mux.HandleFunc("POST /documents/{id}/edges", s.createEdge)
	mux.HandleFunc("DELETE /documents/{id}/edges/{edgeID}", s.deleteEdge)

	mux.HandleFunc("POST /documents/{id}/scenes/{sceneID}/dialogues", s.addDialogue)
	mux.HandleFunc("PATCH /documents/{id}/scenes/{sceneID}/dialogues/{dialogueID}", s.updateDialogue)
	mux.HandleFunc("DELETE /documents/{id}/scenes/{sceneID}/dialogues/{dialogueID}", s.removeDialogue)
	mux.HandleFunc("POST /documents/{id}/scenes/{sceneID}/choices", s.addChoice)
	mux.HandleFunc("PATCH /documents/{id}/scenes/{sceneID}/choices/{choiceID}", s.updateChoice)
	mux.HandleFunc("DELETE /documents/{id}/scenes/{sceneID}/choices/{choiceID}", s.removeChoice)
	mux.HandleFunc("POST /documents/{id}/scenes/{sceneID}/characters", s.addCharacter)
	mux.HandleFunc("DELETE /documents/{id}/scenes/{sceneID}/characters/{characterID}", s.removeCharacter)
	mux.HandleFunc("PUT /documents/{id}/scenes/{sceneID}/location", s.connectLocation)
	mux.HandleFunc("DELETE /documents/{id}/scenes/{sceneID}/location", s.disconnectLocation)

	mux.HandleFunc("POST /documents/{id}/playthroughs", s.startPlaythrough)
	mux.HandleFunc("GET /playthroughs/{playID}", s.playthroughState)
	mux.HandleFunc("POST /playthroughs/{playID}/advance", s.advancePlaythrough)
	mux.HandleFunc("POST /playthroughs/{playID}/choose", s.choosePlaythrough)

	return mux
}

// ListenAndServe starts the API server on the given port. It blocks
// until the server exits.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("API listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "storyforge",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Snapshot())
}

func eventsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	client := events.GetPostgresClient()
	if client == nil {
		fail(w, http.StatusNotFound, "event history not configured")
		return
	}
	rows, err := client.Query(0)
	if err != nil {
		fail(w, http.StatusInternalServerError, "event history query failed")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// OpResponse is the uniform mutation-handler reply.
type OpResponse struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !asset.IsStoryGraph(id) {
		fail(w, http.StatusBadRequest, "not a story graph asset")
		return
	}
	if s.store.Load(r.Context(), id) == nil {
		fail(w, http.StatusNotFound, "no data available")
		return
	}
	text, err := s.store.Export(id)
	if err != nil {
		fail(w, http.StatusInternalServerError, "serialize failed")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = io.WriteString(w, text)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !asset.IsStoryGraph(id) {
		fail(w, http.StatusBadRequest, "not a story graph asset")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		fail(w, http.StatusBadRequest, "read body failed")
		return
	}
	doc, err := codec.Deserialize(string(body))
	if err != nil {
		var pe *codec.ParseError
		if errors.As(err, &pe) {
			fail(w, http.StatusBadRequest, pe.Error())
			return
		}
		fail(w, http.StatusBadRequest, "malformed document")
		return
	}
	s.store.Put(id, doc)
	_, _ = events.Emit("info", "document.replaced", "", map[string]any{"doc_id": id})
	s.scheduleSave(id)
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: id})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !asset.IsStoryGraph(id) {
		fail(w, http.StatusBadRequest, "not a story graph asset")
		return
	}
	if s.store.GetCached(id) != nil || s.store.Load(r.Context(), id) != nil {
		fail(w, http.StatusConflict, "document already exists")
		return
	}
	s.store.Put(id, story.NewDocument())
	_, _ = events.Emit("info", "document.created", "", map[string]any{"doc_id": id})
	if !s.store.Save(r.Context(), id) {
		fail(w, http.StatusInternalServerError, "save failed")
		return
	}
	_, _ = events.Emit("info", "document.saved", "", map[string]any{"doc_id": id})
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: id})
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.GetCached(id) == nil {
		fail(w, http.StatusNotFound, "document not cached")
		return
	}
	if !s.store.Save(r.Context(), id) {
		_, _ = events.Emit("error", "document.save_failed", "", map[string]any{"doc_id": id})
		fail(w, http.StatusInternalServerError, "save failed")
		return
	}
	_, _ = events.Emit("info", "document.saved", "", map[string]any{"doc_id": id})
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: id})
}

func (s *Server) validateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.Load(r.Context(), id) == nil {
		fail(w, http.StatusNotFound, "no data available")
		return
	}
	var res story.Result
	s.store.View(id, func(doc *story.Document) { res = story.Validate(doc) })
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) summarizeDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.Load(r.Context(), id) == nil {
		fail(w, http.StatusNotFound, "no data available")
		return
	}
	var text string
	s.store.View(id, func(doc *story.Document) { text = story.Summarize(doc) })
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// scheduleSave arms the per-document auto-save debouncer.
func (s *Server) scheduleSave(id string) {
	if s.saveDebounce <= 0 {
		return
	}
	s.mu.Lock()
	saver := s.savers[id]
	if saver == nil {
		saver = debounce.New(s.saveDebounce, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if s.store.Save(ctx, id) {
				_, _ = events.Emit("info", "document.saved", "", map[string]any{"doc_id": id, "auto": true})
			} else {
				_, _ = events.Emit("error", "document.save_failed", "", map[string]any{"doc_id": id, "auto": true})
			}
		})
		s.savers[id] = saver
	}
	s.mu.Unlock()
	saver.Trigger()
}

// apply runs a mutation through the cache, emitting the event and arming
// auto-save on success. A false return means either the document is not
// cached or the mutation refused its preconditions.
func (s *Server) apply(id string, event string, fields map[string]any, fn func(*story.Document) bool) bool {
	if !s.store.Apply(id, fn) {
		return false
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["doc_id"] = id
	_, _ = events.Emit("info", event, "", fields)
	s.scheduleSave(id)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, OpResponse{OK: false, Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
