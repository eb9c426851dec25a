package api

import (
	"net/http"

	"github.com/pajamadot/storyforge/internal/story"
)

// Handlers for scene-owned content: dialogues, choices, character and
// location references.

type dialogueRequest struct {
	ID      string `json:"id,omitempty"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (s *Server) addDialogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	var req dialogueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dl := story.Dialogue{ID: req.ID, Speaker: req.Speaker, Text: req.Text}
	if dl.ID == "" {
		dl.ID = story.GenerateID()
	}
	ok := s.apply(id, "dialogue.added", map[string]any{"scene_id": sceneID, "dialogue_id": dl.ID},
		func(doc *story.Document) bool { return doc.AddDialogue(sceneID, dl) })
	if !ok {
		s.failMutation(w, id, "scene not found")
		return
	}
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: dl.ID})
}

func (s *Server) updateDialogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	dialogueID := r.PathValue("dialogueID")
	var req dialogueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok := s.apply(id, "dialogue.updated", map[string]any{"scene_id": sceneID, "dialogue_id": dialogueID},
		func(doc *story.Document) bool {
			return doc.UpdateDialogue(sceneID, dialogueID, func(dl *story.Dialogue) {
				if req.Speaker != "" {
					dl.Speaker = req.Speaker
				}
				if req.Text != "" {
					dl.Text = req.Text
				}
			})
		})
	if !ok {
		s.failMutation(w, id, "dialogue not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: dialogueID})
}

func (s *Server) removeDialogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	dialogueID := r.PathValue("dialogueID")

	ok := s.apply(id, "dialogue.removed", map[string]any{"scene_id": sceneID, "dialogue_id": dialogueID},
		func(doc *story.Document) bool { return doc.RemoveDialogue(sceneID, dialogueID) })
	if !ok {
		s.failMutation(w, id, "dialogue not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: dialogueID})
}

type choiceRequest struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
}

func (s *Server) addChoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	var req choiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := story.Choice{ID: req.ID, Label: req.Label}
	if c.ID == "" {
		c.ID = story.GenerateID()
	}
	ok := s.apply(id, "choice.added", map[string]any{"scene_id": sceneID, "choice_id": c.ID},
		func(doc *story.Document) bool { return doc.AddChoice(sceneID, c) })
	if !ok {
		s.failMutation(w, id, "scene not found")
		return
	}
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: c.ID})
}

func (s *Server) updateChoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	choiceID := r.PathValue("choiceID")
	var req choiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok := s.apply(id, "choice.updated", map[string]any{"scene_id": sceneID, "choice_id": choiceID},
		func(doc *story.Document) bool {
			return doc.UpdateChoice(sceneID, choiceID, func(c *story.Choice) {
				if req.Label != "" {
					c.Label = req.Label
				}
			})
		})
	if !ok {
		s.failMutation(w, id, "choice not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: choiceID})
}

func (s *Server) removeChoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	choiceID := r.PathValue("choiceID")

	ok := s.apply(id, "choice.removed", map[string]any{"scene_id": sceneID, "choice_id": choiceID},
		func(doc *story.Document) bool { return doc.RemoveChoice(sceneID, choiceID) })
	if !ok {
		s.failMutation(w, id, "choice not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: choiceID})
}

type characterRequest struct {
	CharacterID string `json:"characterId"`
	Position    string `json:"position,omitempty"`
}

func (s *Server) addCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	var req characterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ref := story.CharacterRef{CharacterID: req.CharacterID, Position: req.Position}
	ok := s.apply(id, "character.added", map[string]any{"scene_id": sceneID, "character_id": req.CharacterID},
		func(doc *story.Document) bool { return doc.AddCharacter(sceneID, ref) })
	if !ok {
		s.failMutation(w, id, "scene not found or character already present")
		return
	}
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: req.CharacterID})
}

func (s *Server) removeCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	characterID := r.PathValue("characterID")

	ok := s.apply(id, "character.removed", map[string]any{"scene_id": sceneID, "character_id": characterID},
		func(doc *story.Document) bool { return doc.RemoveCharacter(sceneID, characterID) })
	if !ok {
		s.failMutation(w, id, "character not present")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: characterID})
}

type locationRequest struct {
	LocationID string `json:"locationId"`
}

func (s *Server) connectLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")
	var req locationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok := s.apply(id, "location.linked", map[string]any{"scene_id": sceneID, "location_id": req.LocationID},
		func(doc *story.Document) bool { return doc.ConnectLocation(sceneID, req.LocationID) })
	if !ok {
		s.failMutation(w, id, "scene not found or empty locationId")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: req.LocationID})
}

func (s *Server) disconnectLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sceneID := r.PathValue("sceneID")

	ok := s.apply(id, "location.unlinked", map[string]any{"scene_id": sceneID},
		func(doc *story.Document) bool { return doc.DisconnectLocation(sceneID) })
	if !ok {
		s.failMutation(w, id, "scene not found or no location set")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true})
}
