package api

import (
	"net/http"

	"github.com/pajamadot/storyforge/internal/events"
	"github.com/pajamadot/storyforge/internal/player"
	"github.com/pajamadot/storyforge/internal/story"
)

// Playthrough session handlers. Sessions live in server memory; they read
// the cached document and never mutate it.

type playStateResponse struct {
	PlayID     string           `json:"playId"`
	NodeID     string           `json:"nodeId"`
	NodeType   string           `json:"nodeType"`
	NodeName   string           `json:"nodeName"`
	Dialogues  []story.Dialogue `json:"dialogues,omitempty"`
	Choices    []story.Choice   `json:"choices,omitempty"`
	Ended      bool             `json:"ended"`
	EndingType string           `json:"endingType,omitempty"`
}

func (s *Server) playState(playID string, p *player.Playthrough) playStateResponse {
	resp := playStateResponse{
		PlayID:     playID,
		NodeID:     p.Current().Base().ID,
		NodeType:   string(p.Current().Type()),
		NodeName:   p.Current().Base().Name,
		Ended:      p.Ended(),
		EndingType: p.EndingType(),
	}
	if sn := p.CurrentScene(); sn != nil {
		resp.Dialogues = sn.Dialogues
		resp.Choices = p.AvailableChoices()
	}
	return resp
}

func (s *Server) startPlaythrough(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc := s.store.Load(r.Context(), id)
	if doc == nil {
		fail(w, http.StatusNotFound, "no data available")
		return
	}

	p, err := player.New(doc)
	if err != nil {
		fail(w, http.StatusConflict, err.Error())
		return
	}
	playID := story.GenerateID()

	s.mu.Lock()
	s.plays[playID] = p
	s.mu.Unlock()

	_, _ = events.Emit("info", "playthrough.started", "", map[string]any{"doc_id": id, "play_id": playID})
	writeJSON(w, http.StatusCreated, s.playState(playID, p))
}

func (s *Server) playthrough(playID string) *player.Playthrough {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays[playID]
}

func (s *Server) playthroughState(w http.ResponseWriter, r *http.Request) {
	playID := r.PathValue("playID")
	p := s.playthrough(playID)
	if p == nil {
		fail(w, http.StatusNotFound, "playthrough not found")
		return
	}
	writeJSON(w, http.StatusOK, s.playState(playID, p))
}

func (s *Server) advancePlaythrough(w http.ResponseWriter, r *http.Request) {
	playID := r.PathValue("playID")
	p := s.playthrough(playID)
	if p == nil {
		fail(w, http.StatusNotFound, "playthrough not found")
		return
	}
	if err := p.Advance(); err != nil {
		fail(w, http.StatusConflict, err.Error())
		return
	}
	s.emitPlayProgress(playID, p, "playthrough.advanced")
	writeJSON(w, http.StatusOK, s.playState(playID, p))
}

type chooseRequest struct {
	ChoiceID string `json:"choiceId"`
}

func (s *Server) choosePlaythrough(w http.ResponseWriter, r *http.Request) {
	playID := r.PathValue("playID")
	p := s.playthrough(playID)
	if p == nil {
		fail(w, http.StatusNotFound, "playthrough not found")
		return
	}
	var req chooseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := p.Choose(req.ChoiceID); err != nil {
		fail(w, http.StatusConflict, err.Error())
		return
	}
	s.emitPlayProgress(playID, p, "playthrough.choice")
	writeJSON(w, http.StatusOK, s.playState(playID, p))
}

func (s *Server) emitPlayProgress(playID string, p *player.Playthrough, event string) {
	_, _ = events.Emit("info", event, "", map[string]any{
		"play_id": playID,
		"node_id": p.Current().Base().ID,
	})
	if p.Ended() {
		_, _ = events.Emit("info", "playthrough.ended", "", map[string]any{
			"play_id":     playID,
			"ending_type": p.EndingType(),
		})
	}
}
