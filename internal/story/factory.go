package story

import (
	"time"

	"github.com/google/uuid"
)

// Default canvas position for the start node of a new document.
const (
	defaultStartX = 80
	defaultStartY = 200
)

// GenerateID returns an identifier unique with overwhelming probability
// within a process lifetime. The format is URL- and filename-safe.
func GenerateID() string {
	return uuid.NewString()
}

// NodeOptions are partial overrides for node constructors. Zero-value
// fields fall back to variant-specific defaults; an empty ID means a fresh
// generated one. Supplying an ID is valid when it must match an id assigned
// by the embedding editor.
type NodeOptions struct {
	ID   string
	Name string
	PosX float64
	PosY float64
}

func (o NodeOptions) base(nt NodeType, defaultName string) NodeBase {
	id := o.ID
	if id == "" {
		id = GenerateID()
	}
	name := o.Name
	if name == "" {
		name = defaultName
	}
	return NodeBase{ID: id, NodeType: nt, Name: name, PosX: o.PosX, PosY: o.PosY}
}

// NewStartNode constructs a start node.
func NewStartNode(opts NodeOptions) *StartNode {
	return &StartNode{NodeBase: opts.base(NodeStart, "Start")}
}

// SceneOptions are partial overrides for NewSceneNode.
type SceneOptions struct {
	NodeOptions
	LocationID string
}

// NewSceneNode constructs a scene node with empty dialogue, choice, and
// character sequences.
func NewSceneNode(opts SceneOptions) *SceneNode {
	return &SceneNode{
		NodeBase:   opts.base(NodeScene, "New Scene"),
		LocationID: opts.LocationID,
		Characters: []CharacterRef{},
		Dialogues:  []Dialogue{},
		Choices:    []Choice{},
	}
}

// EndOptions are partial overrides for NewEndNode.
type EndOptions struct {
	NodeOptions
	EndingType string
}

// NewEndNode constructs an end node.
func NewEndNode(opts EndOptions) *EndNode {
	return &EndNode{NodeBase: opts.base(NodeEnd, "End"), EndingType: opts.EndingType}
}

// EdgeOptions are partial overrides for NewEdge.
type EdgeOptions struct {
	ID        string
	ChoiceID  string
	Condition string
	Priority  int
}

// NewEdge constructs an edge from one node to another. The edge type is
// derived, never settable: choice iff a ChoiceID is supplied, else flow.
func NewEdge(from, to string, opts EdgeOptions) *Edge {
	id := opts.ID
	if id == "" {
		id = GenerateID()
	}
	et := EdgeFlow
	if opts.ChoiceID != "" {
		et = EdgeChoice
	}
	return &Edge{
		ID:        id,
		From:      from,
		To:        to,
		EdgeType:  et,
		ChoiceID:  opts.ChoiceID,
		Condition: opts.Condition,
		Priority:  opts.Priority,
	}
}

// NewDialogue constructs a dialogue line with a fresh id.
func NewDialogue(speaker, text string) Dialogue {
	return Dialogue{ID: GenerateID(), Speaker: speaker, Text: text}
}

// NewChoice constructs a choice with a fresh id.
func NewChoice(label string) Choice {
	return Choice{ID: GenerateID(), Label: label}
}

// NewDocument produces a fresh document: schema version 1, title
// "Untitled", a single start node at the default position, and no edges.
func NewDocument() *Document {
	now := time.Now().UTC().Format(time.RFC3339)
	doc := &Document{
		Version: 1,
		Metadata: Metadata{
			Title:       "Untitled",
			Description: "",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	start := NewStartNode(NodeOptions{PosX: defaultStartX, PosY: defaultStartY})
	doc.Nodes.Set(start.ID, start)
	return doc
}

// Touch stamps the document's updatedAt with the current UTC time.
func (d *Document) Touch() {
	d.Metadata.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
