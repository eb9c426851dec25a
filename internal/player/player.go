// Package player is the playback runtime for story graphs: it walks a
// document from its start node, surfaces scene content, follows flow and
// choice edges, and recognizes endings. It reads the document but never
// mutates it.
package player

import (
	"fmt"

	"github.com/pajamadot/storyforge/internal/story"
)

// Effect types the player interprets on scene entry.
const (
	effectSetFlag   = "setFlag"
	effectClearFlag = "clearFlag"
)

// Playthrough tracks one walk through a story graph.
type Playthrough struct {
	doc     *story.Document
	current story.Node
	flags   map[string]bool
	visited map[string]bool
	ended   bool
	ending  string
}

// New creates a playthrough positioned at the document's start node.
// Fails if the document has no start node.
func New(doc *story.Document) (*Playthrough, error) {
	start := doc.StartNode()
	if start == nil {
		return nil, fmt.Errorf("document has no start node")
	}
	p := &Playthrough{
		doc:     doc,
		flags:   make(map[string]bool),
		visited: make(map[string]bool),
	}
	p.enter(start)
	return p, nil
}

// Current returns the node the playthrough is at.
func (p *Playthrough) Current() story.Node { return p.current }

// CurrentScene returns the current node as a scene, or nil when the
// playthrough is at a start or end node.
func (p *Playthrough) CurrentScene() *story.SceneNode {
	sn, _ := p.current.(*story.SceneNode)
	return sn
}

// Ended reports whether an end node has been reached.
func (p *Playthrough) Ended() bool { return p.ended }

// EndingType returns the reached ending's classification, or "".
func (p *Playthrough) EndingType() string { return p.ending }

// Visited reports whether the node has been entered.
func (p *Playthrough) Visited(nodeID string) bool { return p.visited[nodeID] }

// Flag reports the value of a playthrough flag.
func (p *Playthrough) Flag(name string) bool { return p.flags[name] }

// SetFlag sets a playthrough flag, for embedding applications that drive
// state from outside the graph's own effects.
func (p *Playthrough) SetFlag(name string, value bool) { p.flags[name] = value }

// Advance follows a flow edge out of the current node. Among eligible
// edges (flow type, condition satisfied) the highest priority wins;
// insertion order breaks ties. Fails when the playthrough has ended or no
// flow edge is eligible.
func (p *Playthrough) Advance() error {
	if p.ended {
		return fmt.Errorf("playthrough has ended")
	}

	ctx := p.evalContext()
	var best *story.Edge
	for _, e := range p.doc.OutgoingEdges(p.current.Base().ID) {
		if e.EdgeType != story.EdgeFlow {
			continue
		}
		if !EvalCondition(e.Condition, ctx) {
			continue
		}
		if best == nil || e.Priority > best.Priority {
			best = e
		}
	}
	if best == nil {
		return fmt.Errorf("no eligible flow edge from node %s", p.current.Base().ID)
	}
	return p.follow(best)
}

// Choose follows the choice edge activated by choiceID out of the current
// scene. Fails when the current node is not a scene, the scene has no such
// choice, no edge activates it, or its condition is unsatisfied.
func (p *Playthrough) Choose(choiceID string) error {
	if p.ended {
		return fmt.Errorf("playthrough has ended")
	}
	sn := p.CurrentScene()
	if sn == nil {
		return fmt.Errorf("current node %s is not a scene", p.current.Base().ID)
	}

	found := false
	for _, c := range sn.Choices {
		if c.ID == choiceID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("scene %s has no choice %s", sn.ID, choiceID)
	}

	ctx := p.evalContext()
	for _, e := range p.doc.OutgoingEdges(sn.ID) {
		if e.ChoiceID != choiceID {
			continue
		}
		if !EvalCondition(e.Condition, ctx) {
			return fmt.Errorf("choice %s is not available", choiceID)
		}
		return p.follow(e)
	}
	return fmt.Errorf("no edge activates choice %s", choiceID)
}

// AvailableChoices returns the current scene's choices whose activating
// edge exists and whose condition is satisfied.
func (p *Playthrough) AvailableChoices() []story.Choice {
	sn := p.CurrentScene()
	if sn == nil {
		return nil
	}
	ctx := p.evalContext()
	var out []story.Choice
	for _, c := range sn.Choices {
		for _, e := range p.doc.OutgoingEdges(sn.ID) {
			if e.ChoiceID == c.ID && EvalCondition(e.Condition, ctx) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (p *Playthrough) follow(e *story.Edge) error {
	next, ok := p.doc.Nodes.Get(e.To)
	if !ok {
		return fmt.Errorf("edge %s targets missing node %s", e.ID, e.To)
	}
	p.enter(next)
	return nil
}

func (p *Playthrough) enter(n story.Node) {
	p.current = n
	p.visited[n.Base().ID] = true

	switch node := n.(type) {
	case *story.SceneNode:
		for _, eff := range node.Effects {
			switch eff.Type {
			case effectSetFlag:
				p.flags[eff.Target] = true
			case effectClearFlag:
				p.flags[eff.Target] = false
			}
		}
	case *story.EndNode:
		p.ended = true
		p.ending = node.EndingType
	}
}

func (p *Playthrough) evalContext() *EvalContext {
	return &EvalContext{Flags: p.flags, Visited: p.visited}
}
