package api

import (
	"net/http"

	"github.com/pajamadot/storyforge/internal/story"
)

// Handlers for node and edge mutations. Each resolves the cached
// document, runs the corresponding story operation, and maps a
// precondition refusal to a 409 without touching the document.

type nodeRequest struct {
	NodeType   string  `json:"nodeType"`
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name,omitempty"`
	PosX       float64 `json:"posX,omitempty"`
	PosY       float64 `json:"posY,omitempty"`
	LocationID string  `json:"locationId,omitempty"`
	EndingType string  `json:"endingType,omitempty"`
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req nodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	base := story.NodeOptions{ID: req.ID, Name: req.Name, PosX: req.PosX, PosY: req.PosY}
	var node story.Node
	switch story.NodeType(req.NodeType) {
	case story.NodeScene:
		node = story.NewSceneNode(story.SceneOptions{NodeOptions: base, LocationID: req.LocationID})
	case story.NodeEnd:
		node = story.NewEndNode(story.EndOptions{NodeOptions: base, EndingType: req.EndingType})
	case story.NodeStart:
		node = story.NewStartNode(base)
	default:
		fail(w, http.StatusBadRequest, "unknown nodeType")
		return
	}

	ok := s.apply(id, "node.created", map[string]any{"node_id": node.Base().ID, "node_type": req.NodeType},
		func(doc *story.Document) bool { return doc.AddNode(node) })
	if !ok {
		s.failMutation(w, id, "node id already in use")
		return
	}
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: node.Base().ID})
}

type nodeUpdateRequest struct {
	Name *string  `json:"name,omitempty"`
	PosX *float64 `json:"posX,omitempty"`
	PosY *float64 `json:"posY,omitempty"`
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	nodeID := r.PathValue("nodeID")
	var req nodeUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok := s.apply(id, "node.updated", map[string]any{"node_id": nodeID},
		func(doc *story.Document) bool {
			return doc.UpdateNode(nodeID, func(n story.Node) {
				if req.Name != nil {
					n.Base().Name = *req.Name
				}
				if req.PosX != nil {
					n.Base().PosX = *req.PosX
				}
				if req.PosY != nil {
					n.Base().PosY = *req.PosY
				}
			})
		})
	if !ok {
		s.failMutation(w, id, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: nodeID})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	nodeID := r.PathValue("nodeID")

	ok := s.apply(id, "node.deleted", map[string]any{"node_id": nodeID},
		func(doc *story.Document) bool { return doc.DeleteNode(nodeID) })
	if !ok {
		s.failMutation(w, id, "node not found or is the start node")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: nodeID})
}

type edgeRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	ChoiceID  string `json:"choiceId,omitempty"`
	Condition string `json:"condition,omitempty"`
	Priority  int    `json:"priority,omitempty"`
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req edgeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var edgeID string
	ok := s.apply(id, "edge.created", map[string]any{"from": req.From, "to": req.To},
		func(doc *story.Document) bool {
			e := doc.CreateEdge(req.From, req.To, story.EdgeOptions{
				ChoiceID:  req.ChoiceID,
				Condition: req.Condition,
				Priority:  req.Priority,
			})
			if e == nil {
				return false
			}
			edgeID = e.ID
			return true
		})
	if !ok {
		s.failMutation(w, id, "edge endpoints must be existing nodes")
		return
	}
	writeJSON(w, http.StatusCreated, OpResponse{OK: true, ID: edgeID})
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	edgeID := r.PathValue("edgeID")

	ok := s.apply(id, "edge.deleted", map[string]any{"edge_id": edgeID},
		func(doc *story.Document) bool { return doc.DeleteEdge(edgeID) })
	if !ok {
		s.failMutation(w, id, "edge not found")
		return
	}
	writeJSON(w, http.StatusOK, OpResponse{OK: true, ID: edgeID})
}

// failMutation distinguishes "document not cached" (404) from a refused
// precondition (409).
func (s *Server) failMutation(w http.ResponseWriter, id, reason string) {
	if s.store.GetCached(id) == nil {
		fail(w, http.StatusNotFound, "document not cached")
		return
	}
	fail(w, http.StatusConflict, reason)
}
